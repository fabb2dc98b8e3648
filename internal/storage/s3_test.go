package storage

import (
	"testing"

	"giveup-backend/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestURLBuilder(t *testing.T) {
	key := "items/user-1/1700000000000_teddy bear.jpg"

	tests := []struct {
		name string
		cfg  config.AWSConfig
		want string
	}{
		{
			name: "aws default",
			cfg:  config.AWSConfig{Region: "eu-central-1", S3Bucket: "giveup"},
			want: "https://giveup.s3.eu-central-1.amazonaws.com/items/user-1/1700000000000_teddy%20bear.jpg",
		},
		{
			name: "public base url wins",
			cfg:  config.AWSConfig{S3Bucket: "giveup", Endpoint: "https://s3.example.com", PublicBaseURL: "https://cdn.example.com/"},
			want: "https://cdn.example.com/items/user-1/1700000000000_teddy%20bear.jpg",
		},
		{
			name: "path style endpoint",
			cfg:  config.AWSConfig{S3Bucket: "giveup", Endpoint: "http://localhost:9000", UsePathStyle: true},
			want: "http://localhost:9000/giveup/items/user-1/1700000000000_teddy%20bear.jpg",
		},
		{
			name: "virtual host endpoint",
			cfg:  config.AWSConfig{S3Bucket: "giveup", Endpoint: "https://s3.ru1.storage.example"},
			want: "https://giveup.s3.ru1.storage.example/items/user-1/1700000000000_teddy%20bear.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, newURLBuilder(tt.cfg).build(key))
		})
	}
}
