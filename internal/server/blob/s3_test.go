package blob

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubAWS(t *testing.T) {
	t.Helper()
	origLoad, origNewS3, origNewPre := loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient
	origPut, origGet, origDel := presignPutObject, presignGetObject, deleteObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		presignPutObject = origPut
		presignGetObject = origGet
		deleteObject = origDel
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client { return &s3.Client{} }
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient { return &s3.PresignClient{} }
}

func testStore() *S3Store {
	return NewS3Store(Config{
		RootUser:     "minioadmin",
		RootPassword: "minioadmin",
		Bucket:       "duogallery",
		Region:       "us-east-1",
		BaseEndpoint: "http://127.0.0.1:9000",
	})
}

func TestPresignPut(t *testing.T) {
	stubAWS(t)
	var gotKey string
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		gotKey = *in.Key
		return &v4.PresignedHTTPRequest{URL: "https://minio/put"}, nil
	}

	url, err := testStore().PresignPut(context.Background(), "photos/2026/03/14/x")
	require.NoError(t, err)
	assert.Equal(t, "https://minio/put", url)
	assert.Equal(t, "photos/2026/03/14/x", gotKey)
}

func TestPresignGet_Error(t *testing.T) {
	stubAWS(t)
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign-get-fail")
	}

	_, err := testStore().PresignGet(context.Background(), "photos/x")
	require.EqualError(t, err, "presign-get-fail")
}

func TestDelete(t *testing.T) {
	stubAWS(t)
	var gotKey string
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		gotKey = *in.Key
		return &s3.DeleteObjectOutput{}, nil
	}

	require.NoError(t, testStore().Delete(context.Background(), "photos/x"))
	assert.Equal(t, "photos/x", gotKey)
}

func TestUploadKeys(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	storageKey, thumbKey := UploadKeys(now)

	assert.Regexp(t, `^photos/2026/03/14/[0-9a-f-]{36}$`, storageKey)
	assert.Regexp(t, `^thumbs/2026/03/14/[0-9a-f-]{36}$`, thumbKey)
	// the pair shares one id
	assert.Equal(t, storageKey[len("photos"):], thumbKey[len("thumbs"):])
}
