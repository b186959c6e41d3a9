package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectPath(t *testing.T) {
	cases := []struct {
		name, bucket, ref, want string
	}{
		{"public url", "package-photos", "https://x.supabase.co/storage/v1/object/public/package-photos/c1/encomenda_1.jpg", "c1/encomenda_1.jpg"},
		{"signed url with token", "package-photos", "https://x.supabase.co/storage/v1/object/sign/package-photos/c1/a.jpg?token=abc", "c1/a.jpg"},
		{"bucket prefix", "package-photos", "package-photos/c1/a.jpg", "c1/a.jpg"},
		{"bare key", "package-photos", "c1/a.jpg", "c1/a.jpg"},
		{"leading slash", "package-photos", "/c1/a.jpg", "c1/a.jpg"},
		{"empty", "package-photos", "  ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ObjectPath(tc.bucket, tc.ref))
		})
	}
}

func TestPhotoKeys(t *testing.T) {
	assert.Equal(t, "c1/encomenda_1.jpg", PackagePhotoKey("c1", "../encomenda_1.jpg"))
	assert.Equal(t, "c1/public/blurred_encomenda_1.jpg", PublicPhotoKey("c1", "blurred_encomenda_1.jpg"))
}

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	s, err := NewStorage(Config{Type: "local", BasePath: t.TempDir(), BaseURL: "/api/v1/files/"})
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "c1/a.jpg", bytes.NewReader([]byte("jpeg")), "image/jpeg"))

	ok, err := s.Exists(ctx, "c1/a.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	size, err := s.GetSize(ctx, "c1/a.jpg")
	require.NoError(t, err)
	assert.EqualValues(t, 4, size)

	rc, err := s.Get(ctx, "c1/a.jpg")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "jpeg", string(data))

	url, err := s.GetSignedURL(ctx, "c1/a.jpg", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/files/c1/a.jpg", url)

	require.NoError(t, s.Delete(ctx, "c1/a.jpg"))
	_, err = s.Get(ctx, "c1/a.jpg")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalStorage_StaysInsideBasePath(t *testing.T) {
	base := t.TempDir()
	s, err := NewLocalStorage(Config{BasePath: base})
	require.NoError(t, err)

	require.NoError(t, s.Save(context.Background(), "../../escape.jpg", strings.NewReader("x"), "image/jpeg"))
	ok, err := s.Exists(context.Background(), "escape.jpg")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewStorage_Unsupported(t *testing.T) {
	_, err := NewStorage(Config{Type: "ftp"})
	assert.Error(t, err)
}
