package backup

import (
	"context"
	"errors"
	"io"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/logging"
	sc "github.com/businessecom2026-code/Safe360co-sub000/internal/server/config"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSnapshotter struct {
	body []byte
	err  error
}

func (f fakeSnapshotter) Snapshot(context.Context) ([]byte, error) {
	return f.body, f.err
}

type upload struct {
	bucket, key, contentType string
	body                     []byte
	hasDeadline              bool
}

type fakeUploader struct {
	mu      sync.Mutex
	uploads []upload
	err     error
}

func (f *fakeUploader) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	_, hasDeadline := ctx.Deadline()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, upload{
		bucket:      aws.ToString(in.Bucket),
		key:         aws.ToString(in.Key),
		contentType: aws.ToString(in.ContentType),
		body:        b,
		hasDeadline: hasDeadline,
	})
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeUploader) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

var t0 = time.Date(2026, 5, 7, 23, 30, 0, 0, time.UTC)

func TestObjectKey(t *testing.T) {
	key := ObjectKey(t0)
	assert.Regexp(t, regexp.MustCompile(`^snapshots/2026/05/07/[0-9a-f-]{36}\.json$`), key)
	assert.NotEqual(t, key, ObjectKey(t0))
}

func TestExport(t *testing.T) {
	up := &fakeUploader{}
	e := NewExporter(fakeSnapshotter{body: []byte(`{"identities":[]}`)}, up, "vault-backups",
		timex.NewManualClock(t0), logging.NewNop())

	key, err := e.Export(context.Background())
	require.NoError(t, err)

	require.Len(t, up.uploads, 1)
	got := up.uploads[0]
	assert.Equal(t, "vault-backups", got.bucket)
	assert.Equal(t, key, got.key)
	assert.Equal(t, "application/json", got.contentType)
	assert.Equal(t, `{"identities":[]}`, string(got.body))
	assert.True(t, got.hasDeadline)
}

func TestExport_Errors(t *testing.T) {
	snapErr := errors.New("disk gone")
	e := NewExporter(fakeSnapshotter{err: snapErr}, &fakeUploader{}, "b", nil, nil)
	_, err := e.Export(context.Background())
	require.ErrorIs(t, err, snapErr)

	upErr := errors.New("access denied")
	e = NewExporter(fakeSnapshotter{body: []byte("{}")}, &fakeUploader{err: upErr}, "b", nil, nil)
	_, err = e.Export(context.Background())
	require.ErrorIs(t, err, upErr)
	assert.Contains(t, err.Error(), "upload snapshots/")
}

func TestRun(t *testing.T) {
	up := &fakeUploader{}
	e := NewExporter(fakeSnapshotter{body: []byte("{}")}, up, "b", nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return up.count() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestNewS3Client(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	var region string
	var hasCreds bool
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		region = lo.Region
		hasCreds = lo.Credentials != nil
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		opts = s3.Options{}
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}

	cfg := &sc.Config{
		S3Region:       "eu-central-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
	}
	c, err := NewS3Client(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "eu-central-1", region)
	assert.True(t, hasCreds)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)

	cfg.S3RootUser = ""
	cfg.S3BaseEndpoint = ""
	_, err = NewS3Client(context.Background(), cfg)
	require.NoError(t, err)
	assert.False(t, hasCreds)
	assert.Nil(t, opts.BaseEndpoint)

	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("boom")
	}
	_, err = NewS3Client(context.Background(), cfg)
	require.ErrorContains(t, err, "load aws config")
}
