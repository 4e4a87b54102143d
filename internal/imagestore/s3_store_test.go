package imagestore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"restore/internal/model"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	puts    map[string]string
	types   map[string]string
	deleted []string
	putErr  error
}

func (f *fakeObjects) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, _ := io.ReadAll(params.Body)
	f.puts[*params.Key] = string(body)
	if params.ContentType != nil {
		f.types[*params.Key] = *params.ContentType
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, *params.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func newFake() *fakeObjects {
	return &fakeObjects{puts: map[string]string{}, types: map[string]string{}}
}

func TestS3Store_Upload(t *testing.T) {
	client := newFake()
	store := NewS3StoreWithClient(client, S3Options{
		Bucket:        "images",
		Prefix:        "products/",
		PublicBaseURL: "https://cdn.example.com/",
	}, nil, zerolog.Nop())

	result, err := store.Upload(context.Background(), Upload{
		Filename:    "Mouse.PNG",
		ContentType: "image/png",
		Body:        strings.NewReader("png-bytes"),
	})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.PublicID, "products/"))
	assert.True(t, strings.HasSuffix(result.PublicID, ".png"))
	assert.Equal(t, "https://cdn.example.com/"+result.PublicID, result.URL)
	assert.Equal(t, "png-bytes", client.puts[result.PublicID])
	assert.Equal(t, "image/png", client.types[result.PublicID])
}

func TestS3Store_UploadFailure(t *testing.T) {
	client := newFake()
	client.putErr = errors.New("access denied")
	store := NewS3StoreWithClient(client, S3Options{Bucket: "images"}, nil, zerolog.Nop())

	result, err := store.Upload(context.Background(), Upload{Filename: "a.jpg", Body: strings.NewReader("x")})

	require.Error(t, err)
	assert.Nil(t, result)
}

func TestS3Store_Delete(t *testing.T) {
	client := newFake()
	store := NewS3StoreWithClient(client, S3Options{Bucket: "images"}, nil, zerolog.Nop())

	require.NoError(t, store.Delete(context.Background(), "products/a.png"))
	require.NoError(t, store.Delete(context.Background(), ""))

	assert.Equal(t, []string{"products/a.png"}, client.deleted)
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Upload(context.Background(), Upload{})
	assert.ErrorIs(t, err, model.ErrServiceUnavailable)
	assert.NoError(t, Disabled{}.Delete(context.Background(), "x"))
}
