package gitutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePullRequestURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantOwner string
		wantRepo  string
		wantPR    int
		wantErr   bool
	}{
		{
			name:      "standard url",
			url:       "https://github.com/driftaldev/redline/pull/42",
			wantOwner: "driftaldev",
			wantRepo:  "redline",
			wantPR:    42,
		},
		{
			name:      "trailing slash",
			url:       "https://github.com/owner/repo/pull/7/",
			wantOwner: "owner",
			wantRepo:  "repo",
			wantPR:    7,
		},
		{
			name:    "not a pull request url",
			url:     "https://github.com/owner/repo/issues/7",
			wantErr: true,
		},
		{
			name:    "not github",
			url:     "https://gitlab.com/owner/repo/pull/7",
			wantErr: true,
		},
		{
			name:      "www host",
			url:       "https://www.github.com/owner/repo/pull/12",
			wantOwner: "owner",
			wantRepo:  "repo",
			wantPR:    12,
		},
		{
			name:    "extra path segment",
			url:     "https://github.com/owner/repo/pull/7/files",
			wantErr: true,
		},
		{
			name:    "non-numeric number",
			url:     "https://github.com/owner/repo/pull/abc",
			wantErr: true,
		},
		{
			name:    "empty",
			url:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, pr, err := ParsePullRequestURL(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOwner, owner)
			assert.Equal(t, tt.wantRepo, repo)
			assert.Equal(t, tt.wantPR, pr)
		})
	}
}
