package grantsource

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authz-service/internal/config"
	"authz-service/pkg/rbac"
	"authz-service/pkg/rbac/presets"
)

const smallDocument = `
roles:
  - name: viewer
    grants: [dashboard.view]
  - name: driver
    inherits: viewer
    grants: [shipments.view.own]
hierarchy: [viewer, driver]
`

func writeDocument(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "grants.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestEmbeddedLoadsDefaultPreset(t *testing.T) {
	src := NewEmbedded("")
	assert.Equal(t, "embedded:"+presets.Default, src.Name())

	table, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rbac.Hierarchy(), table.Roles())
}

func TestEmbeddedUnknownPreset(t *testing.T) {
	_, err := NewEmbedded("aviation").Load(context.Background())
	assert.ErrorIs(t, err, rbac.ErrConfiguration)
}

func TestEmbeddedHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEmbedded("").Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileLoad(t *testing.T) {
	src := NewFile(writeDocument(t, smallDocument))

	table, err := src.Load(context.Background())
	require.NoError(t, err)

	driver, err := table.GrantsFor(rbac.RoleDriver)
	require.NoError(t, err)
	assert.Equal(t, []rbac.Permission{rbac.PermDashboardView, rbac.PermShipmentsViewOwn}, driver.Sorted())
}

func TestFileLoadErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		target error
	}{
		{"unknown permission", "roles:\n  - name: viewer\n    grants: [files.delete]\n", rbac.ErrUnknownPermission},
		{"unknown field", "roles:\n  - name: viewer\n    grant: [dashboard.view]\n", rbac.ErrConfiguration},
		{"empty document", "", rbac.ErrConfiguration},
		{
			"inverted role order",
			"roles:\n  - name: admin\n    grants: [dashboard.view]\n  - name: viewer\n    inherits: admin\n    grants: [users.manage]\nhierarchy: [admin, viewer]\n",
			rbac.ErrHierarchyViolation,
		},
		{"too large", strings.Repeat("#", maxDocumentBytes+10), rbac.ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFile(writeDocument(t, tt.body)).Load(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestFileMissing(t *testing.T) {
	_, err := NewFile(filepath.Join(t.TempDir(), "absent.yaml")).Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type fakeS3 struct {
	s3iface.S3API
	body      string
	err       error
	gotBucket string
	gotKey    string
}

func (f *fakeS3) GetObjectWithContext(_ aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	f.gotBucket = aws.StringValue(in.Bucket)
	f.gotKey = aws.StringValue(in.Key)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewBufferString(f.body))}, nil
}

func TestS3Load(t *testing.T) {
	fake := &fakeS3{body: smallDocument}
	src := NewS3WithClient(fake, "authz-config", "grants/prod.yaml")

	table, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "authz-config", fake.gotBucket)
	assert.Equal(t, "grants/prod.yaml", fake.gotKey)
	assert.Equal(t, "s3://authz-config/grants/prod.yaml", src.Name())
	assert.True(t, table.Declares(rbac.RoleDriver))
}

func TestS3LoadFailure(t *testing.T) {
	boom := errors.New("NoSuchKey")
	_, err := NewS3WithClient(&fakeS3{err: boom}, "b", "k").Load(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestNewSelectsSource(t *testing.T) {
	src, err := New(config.GrantTableConfig{Source: config.SourceFile, File: "/tmp/x.yaml"}, config.AWSConfig{})
	require.NoError(t, err)
	assert.IsType(t, &File{}, src)

	src, err = New(config.GrantTableConfig{Source: config.SourceEmbedded}, config.AWSConfig{})
	require.NoError(t, err)
	assert.IsType(t, &Embedded{}, src)

	src, err = New(config.GrantTableConfig{Source: config.SourceS3, S3Bucket: "b", S3Key: "k"}, config.AWSConfig{Region: "us-east-1"})
	require.NoError(t, err)
	assert.IsType(t, &S3{}, src)

	_, err = New(config.GrantTableConfig{Source: "consul"}, config.AWSConfig{})
	assert.ErrorIs(t, err, rbac.ErrConfiguration)
}

func TestShippedDocumentMatchesPreset(t *testing.T) {
	table, err := NewFile(filepath.Join("..", "..", "config", "grant-table.yaml")).Load(context.Background())
	require.NoError(t, err)

	preset, err := NewEmbedded(presets.Default).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, preset.Fingerprint(), table.Fingerprint())
}
