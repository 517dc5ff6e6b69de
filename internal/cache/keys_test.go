package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCacheKey(t *testing.T) {
	tests := []struct {
		name        string
		serviceName string
		objectType  string
		identifier  string
		paramsKey   []string
		expectedKey string
	}{
		{
			name:        "player session",
			serviceName: "session",
			objectType:  "player",
			identifier:  "01HZY5E7Q6",
			expectedKey: "quizrunner:session:player:01HZY5E7Q6",
		},
		{
			name:        "with empty paramsKey",
			serviceName: "session",
			objectType:  "player",
			identifier:  "abc",
			paramsKey:   []string{},
			expectedKey: "quizrunner:session:player:abc",
		},
		{
			name:        "with multiple paramsKey",
			serviceName: "bank",
			objectType:  "source",
			identifier:  "python.json",
			paramsKey:   []string{"low", "v2"},
			expectedKey: "quizrunner:bank:source:python.json:low_v2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedKey, GenerateCacheKey(tt.serviceName, tt.objectType, tt.identifier, tt.paramsKey...))
		})
	}
}
