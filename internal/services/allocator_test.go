package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fsdevblog/shortlinks/internal/db"
	"github.com/fsdevblog/shortlinks/internal/models"
	"github.com/fsdevblog/shortlinks/internal/repositories/memstore"
	"github.com/fsdevblog/shortlinks/internal/services/smocks"
)

func TestAllocator_AllocateCustom(t *testing.T) {
	repo := memstore.NewLinkRepo(db.NewMemStorage())
	require.NoError(t, repo.Create(t.Context(), &models.Link{ShortCode: "taken"}))
	a := NewAllocator(repo, nil, nil)

	tests := []struct {
		name    string
		code    string
		wantErr error
	}{
		{name: "valid", code: "my_code-1"},
		{name: "min length", code: "abc"},
		{name: "max length", code: strings.Repeat("a", 20)},
		{name: "too short", code: "ab", wantErr: ErrInvalidShortCode},
		{name: "too long", code: strings.Repeat("a", 21), wantErr: ErrInvalidShortCode},
		{name: "space", code: "ab cd", wantErr: ErrInvalidShortCode},
		{name: "slash", code: "ab/cd", wantErr: ErrInvalidShortCode},
		{name: "dot", code: "abc.d", wantErr: ErrInvalidShortCode},
		{name: "unicode", code: "кодик", wantErr: ErrInvalidShortCode},
		{name: "empty", code: "", wantErr: ErrInvalidShortCode},
		{name: "taken", code: "taken", wantErr: ErrShortCodeTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := a.AllocateCustom(t.Context(), tt.code)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestAllocator_AllocateRandom(t *testing.T) {
	repo := memstore.NewLinkRepo(db.NewMemStorage())
	a := NewAllocator(repo, nil, nil)

	seen := make(map[string]struct{})
	for range 200 {
		code, err := a.AllocateRandom(t.Context(), models.DefaultShortCodeLength)
		require.NoError(t, err)
		require.Len(t, code, models.DefaultShortCodeLength)
		for _, c := range code {
			require.True(t, strings.ContainsRune(CodeAlphabet, c), "unexpected char %q in %s", c, code)
		}
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 190)
}

func TestAllocator_RetriesThenExhausts(t *testing.T) {
	repo := new(smocks.LinkRepositoryMock)
	repo.On("Exists", mock.Anything, "dupe").Return(true, nil)

	var calls int
	gen := func(int) (string, error) {
		calls++
		return "dupe", nil
	}
	a := NewAllocator(repo, gen, nil)

	_, err := a.AllocateRandom(t.Context(), 8)
	require.ErrorIs(t, err, ErrAllocationExhausted)
	assert.Equal(t, MaxAllocationAttempts, calls)
	repo.AssertNumberOfCalls(t, "Exists", MaxAllocationAttempts)
}

func TestAllocator_ReturnsFirstFreeCode(t *testing.T) {
	repo := new(smocks.LinkRepositoryMock)
	repo.On("Exists", mock.Anything, "first").Return(true, nil).Once()
	repo.On("Exists", mock.Anything, "second").Return(false, nil).Once()

	codes := []string{"first", "second", "third"}
	gen := func(int) (string, error) {
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}
	a := NewAllocator(repo, gen, nil)

	code, err := a.AllocateRandom(t.Context(), 8)
	require.NoError(t, err)
	assert.Equal(t, "second", code)
	repo.AssertExpectations(t)
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		valid bool
	}{
		{in: "example.com", want: "https://example.com", valid: true},
		{in: "  example.com/path?q=1  ", want: "https://example.com/path?q=1", valid: true},
		{in: "http://example.com", want: "http://example.com", valid: true},
		{in: "HTTPS://Example.com", want: "HTTPS://Example.com", valid: true},
		{in: "ftp://example.com", want: "ftp://example.com", valid: false},
		{in: "not a url", want: "https://not a url", valid: false},
		{in: "https://", want: "https://", valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NormalizeURL(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.valid, IsProbablyURL(got))
		})
	}
}
