package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCLIFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    cliOptions
		wantErr bool
	}{
		{
			name: "upload with name",
			args: []string{"-config", "c.yaml", "upload", "a.txt", "remote.txt"},
			want: cliOptions{configPath: "c.yaml", command: cmdUpload, args: []string{"a.txt", "remote.txt"}},
		},
		{
			name: "download by key",
			args: []string{"-key", "users/1/a.txt", "download", "a.txt"},
			want: cliOptions{storageKey: "users/1/a.txt", command: cmdDownload, args: []string{"a.txt"}},
		},
		{
			name: "clear cache",
			args: []string{"clear-cache"},
			want: cliOptions{command: cmdClearCache, args: []string{}},
		},
		{name: "no command", args: nil, wantErr: true},
		{name: "unknown command", args: []string{"sync"}, wantErr: true},
		{name: "upload without file", args: []string{"upload"}, wantErr: true},
		{name: "download without url or key", args: []string{"download", "a.txt"}, wantErr: true},
		{name: "unknown flag", args: []string{"-verbose", "clear-cache"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCLIFlags(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
