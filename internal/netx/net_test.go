package netx

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutPresigned(t *testing.T) {
	photo := []byte("jpeg bytes")

	t.Run("200 ok", func(t *testing.T) {
		var gotBody []byte
		var gotCT, gotMethod string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotCT = r.Header.Get("Content-Type")
			gotBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		}))
		defer ts.Close()

		err := PutPresigned(context.Background(), ts.Client(), ts.URL+"/p?X-Amz-Signature=abc", "image/jpeg", photo)
		require.NoError(t, err)
		assert.Equal(t, http.MethodPut, gotMethod)
		assert.Equal(t, "image/jpeg", gotCT)
		assert.Equal(t, photo, gotBody)
	})

	t.Run("default content type", func(t *testing.T) {
		var gotCT string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotCT = r.Header.Get("Content-Type")
		}))
		defer ts.Close()

		require.NoError(t, PutPresigned(context.Background(), ts.Client(), ts.URL, "", photo))
		assert.Equal(t, "application/octet-stream", gotCT)
	})

	t.Run("non-200", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("SignatureDoesNotMatch"))
		}))
		defer ts.Close()

		err := PutPresigned(context.Background(), ts.Client(), ts.URL, "", photo)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SignatureDoesNotMatch")
	})
}

func TestGetPresigned(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("leafy"))
	}))
	defer ts.Close()

	var buf bytes.Buffer
	n, err := GetPresigned(context.Background(), ts.Client(), ts.URL+"/photo", &buf)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
	assert.Equal(t, "leafy", buf.String())

	_, err = GetPresigned(context.Background(), ts.Client(), ts.URL+"/missing", &buf)
	require.Error(t, err)
}
