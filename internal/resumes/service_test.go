package resumes

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmatch-backend/internal/embedding"
	"jobmatch-backend/internal/extract"
)

type fakeExtractor struct {
	text  string
	err   error
	calls int
}

func (f *fakeExtractor) Extract(ctx context.Context, r io.Reader) (string, error) {
	f.calls++
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

// fakeEncoder applies the real character budget and records what it was asked to embed.
type fakeEncoder struct {
	dims   int
	err    error
	inputs []string
}

func (f *fakeEncoder) Embed(ctx context.Context, text string) ([]float32, error) {
	input, _ := embedding.Truncate(text)
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	dims := f.dims
	if dims == 0 {
		dims = embedding.Dimensions
	}
	return make([]float32, dims), nil
}

type failingRepo struct {
	*MemoryRepo
	insertErr error
	emptyAck  bool
}

func (f *failingRepo) Insert(ctx context.Context, in NewResume) (Summary, error) {
	if f.insertErr != nil {
		return Summary{}, f.insertErr
	}
	if f.emptyAck {
		return Summary{}, nil
	}
	return f.MemoryRepo.Insert(ctx, in)
}

func newTestService(text string) (*Service, *MemoryRepo, *fakeExtractor, *fakeEncoder) {
	repo := NewMemoryRepo()
	ext := &fakeExtractor{text: text}
	enc := &fakeEncoder{}
	return NewService(repo, ext, enc), repo, ext, enc
}

func TestUploadStoresOneRecordScopedToOwner(t *testing.T) {
	svc, repo, _, _ := newTestService("Jane Doe\nSenior Go Engineer")
	payload := bytes.Repeat([]byte{'x'}, 12288)

	ack, err := svc.Upload(context.Background(), "u1", "resume.pdf", bytes.NewReader(payload))
	require.NoError(t, err)
	assert.NotEmpty(t, ack.ID)
	assert.Equal(t, "resume.pdf", ack.Filename)
	assert.Equal(t, int64(12288), ack.ByteSize)
	assert.False(t, ack.CreatedAt.IsZero())

	u1, err := svc.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, u1, 1)
	assert.Equal(t, ack.ID, u1[0].ID)

	u2, err := svc.List(context.Background(), "u2")
	require.NoError(t, err)
	assert.Empty(t, u2)

	stored := repo.data[ack.ID]
	assert.Len(t, stored.Embedding, embedding.Dimensions)
	assert.Equal(t, "Jane Doe\nSenior Go Engineer", stored.ExtractedText)
}

func TestUploadRejectsBeforeExtraction(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int
		want     error
	}{
		{name: "docx", filename: "resume.docx", size: 100, want: ErrUnsupportedType},
		{name: "no extension", filename: "resume", size: 100, want: ErrUnsupportedType},
		{name: "too large", filename: "resume.pdf", size: 11 << 20, want: ErrPayloadTooLarge},
		{name: "one byte over", filename: "resume.pdf", size: MaxUploadBytes + 1, want: ErrPayloadTooLarge},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, ext, enc := newTestService("text")
			_, err := svc.Upload(context.Background(), "u1", tt.filename, bytes.NewReader(make([]byte, tt.size)))
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, ext.calls)
			assert.Empty(t, enc.inputs)
			assert.Empty(t, repo.data)
		})
	}
}

func TestUploadAcceptsExactLimitAndUppercaseExtension(t *testing.T) {
	svc, _, ext, _ := newTestService("text")
	ack, err := svc.Upload(context.Background(), "u1", "RESUME.PDF", bytes.NewReader(make([]byte, MaxUploadBytes)))
	require.NoError(t, err)
	assert.Equal(t, int64(MaxUploadBytes), ack.ByteSize)
	assert.Equal(t, 1, ext.calls)
}

func TestUploadPropagatesStageErrors(t *testing.T) {
	tests := []struct {
		name    string
		extErr  error
		encErr  error
		encDims int
		want    error
	}{
		{name: "corrupted", extErr: extract.ErrFormat, want: extract.ErrFormat},
		{name: "image only", extErr: extract.ErrEmptyContent, want: extract.ErrEmptyContent},
		{name: "provider down", encErr: embedding.ErrService, want: embedding.ErrService},
		{name: "encoder mismatch", encErr: embedding.ErrDimensionMismatch, want: embedding.ErrDimensionMismatch},
		{name: "short vector", encDims: 768, want: embedding.ErrDimensionMismatch},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMemoryRepo()
			svc := NewService(repo, &fakeExtractor{text: "text", err: tt.extErr}, &fakeEncoder{err: tt.encErr, dims: tt.encDims})
			_, err := svc.Upload(context.Background(), "u1", "resume.pdf", strings.NewReader("%PDF"))
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, repo.data)
		})
	}
}

func TestUploadEmptyContentIsDistinctFromFormat(t *testing.T) {
	svc := NewService(NewMemoryRepo(), &fakeExtractor{err: extract.ErrEmptyContent}, &fakeEncoder{})
	_, err := svc.Upload(context.Background(), "u1", "scan.pdf", strings.NewReader("%PDF"))
	assert.ErrorIs(t, err, extract.ErrEmptyContent)
	assert.False(t, errors.Is(err, extract.ErrFormat))
}

func TestUploadWrapsPersistenceFailures(t *testing.T) {
	tests := []struct {
		name string
		repo *failingRepo
	}{
		{name: "insert error", repo: &failingRepo{MemoryRepo: NewMemoryRepo(), insertErr: errors.New("connection reset")}},
		{name: "empty ack", repo: &failingRepo{MemoryRepo: NewMemoryRepo(), emptyAck: true}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.repo, &fakeExtractor{text: "text"}, &fakeEncoder{})
			_, err := svc.Upload(context.Background(), "u1", "resume.pdf", strings.NewReader("%PDF"))
			assert.ErrorIs(t, err, ErrPersistence)
		})
	}
}

func TestUploadTruncatesOnlyEncoderInput(t *testing.T) {
	long := strings.Repeat("é", embedding.MaxChars+500)
	svc, repo, _, enc := newTestService(long)

	ack, err := svc.Upload(context.Background(), "u1", "long.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)

	require.Len(t, enc.inputs, 1)
	assert.Equal(t, embedding.MaxChars, len([]rune(enc.inputs[0])))
	assert.Equal(t, long, repo.data[ack.ID].ExtractedText)
}

func TestUploadRequiresOwner(t *testing.T) {
	svc, _, ext, _ := newTestService("text")
	_, err := svc.Upload(context.Background(), " ", "resume.pdf", strings.NewReader("%PDF"))
	assert.ErrorIs(t, err, ErrOwnerRequired)
	assert.Zero(t, ext.calls)
}

func TestGetAndDeleteAreOwnerScoped(t *testing.T) {
	svc, _, _, _ := newTestService("text")
	ctx := context.Background()
	ack, err := svc.Upload(ctx, "u1", "resume.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)

	got, err := svc.Get(ctx, "u1", ack.ID)
	require.NoError(t, err)
	assert.Equal(t, "text", got.ExtractedText)
	assert.Nil(t, got.Embedding)

	_, err = svc.Get(ctx, "u2", ack.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "u2", ack.ID), ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "u1", ack.ID))
	_, err = svc.Get(ctx, "u1", ack.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "u1", ack.ID), ErrNotFound)
}

func TestOutcomeLabels(t *testing.T) {
	assert.Equal(t, "acknowledged", outcome(nil))
	assert.Equal(t, "format_error", outcome(extract.ErrFormat))
	assert.Equal(t, "persistence_error", outcome(errors.Join(ErrPersistence, errors.New("x"))))
	assert.Equal(t, "error", outcome(errors.New("boom")))
}
