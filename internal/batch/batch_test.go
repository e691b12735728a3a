package batch

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/MeKo-Tech/credex/internal/extract"
	"github.com/MeKo-Tech/credex/internal/registry"
	"github.com/MeKo-Tech/credex/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDocs(t *testing.T, docs map[string][]byte) string {
	t.Helper()
	dir := t.TempDir()
	for name, data := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o600))
	}
	return dir
}

func cardDocs(t *testing.T, n int) map[string][]byte {
	t.Helper()
	card := testutil.ReadFixture(t, "card.json")
	docs := make(map[string][]byte, n)
	for i := range n {
		docs[fmt.Sprintf("%c.json", 'a'+i)] = card
	}
	return docs
}

func TestProcessBatch_OrderedResults(t *testing.T) {
	dir := writeDocs(t, cardDocs(t, 8))

	var progressed atomic.Int32
	cfg := &Config{
		Workers: 3,
		Extract: extract.DefaultOptions(),
		Progress: func(done, total int) {
			progressed.Add(1)
			assert.Equal(t, 8, total)
		},
	}

	res, err := ProcessBatch(context.Background(), []string{dir}, cfg)
	require.NoError(t, err)
	require.Len(t, res.Items, 8)
	assert.Equal(t, int32(8), progressed.Load())
	assert.Equal(t, 3, res.WorkerCount)

	for i, it := range res.Items {
		assert.Equal(t, fmt.Sprintf("%c.json", 'a'+i), filepath.Base(it.File))
		require.NoError(t, it.Err)
		assert.Equal(t, "12045-D", it.Result.CanonicalCode())
	}

	stats := res.Stats()
	assert.Equal(t, 8, stats.Succeeded)
	assert.Equal(t, 8, stats.Complete)
	assert.Zero(t, stats.Failed)
}

func TestProcessBatch_ContinueOnError(t *testing.T) {
	docs := cardDocs(t, 2)
	docs["broken.json"] = []byte(`[[[[0,0]], "x"`)
	dir := writeDocs(t, docs)

	res, err := ProcessBatch(context.Background(), []string{dir}, &Config{
		Workers:         2,
		ContinueOnError: true,
		Extract:         extract.DefaultOptions(),
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)

	broken := res.Items[2]
	assert.Equal(t, "broken.json", filepath.Base(broken.File))
	require.Error(t, broken.Err)
	assert.NotEmpty(t, broken.Error)
	assert.Nil(t, broken.Result)
	assert.Equal(t, 1, res.Stats().Failed)
}

func TestProcessBatch_StopsOnError(t *testing.T) {
	dir := writeDocs(t, map[string][]byte{"broken.json": []byte("{")})

	res, err := ProcessBatch(context.Background(), []string{dir}, &Config{Workers: 1, Extract: extract.DefaultOptions()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.json")
	require.NotNil(t, res)
	assert.Len(t, res.Items, 1)
}

func TestProcessBatch_NoFiles(t *testing.T) {
	_, err := ProcessBatch(context.Background(), []string{t.TempDir()}, &Config{})
	assert.ErrorIs(t, err, ErrNoFiles)
}

type codeRegistry map[string]registry.Record

func (r codeRegistry) Lookup(_ context.Context, code string) (*registry.Record, error) {
	rec, ok := r[code]
	if !ok {
		return nil, registry.ErrNotFound
	}
	return &rec, nil
}

func TestProcessBatch_Verify(t *testing.T) {
	dir := writeDocs(t, map[string][]byte{
		"card.yaml": testutil.ReadFixture(t, "card.yaml"),
	})

	res, err := ProcessBatch(context.Background(), []string{dir}, &Config{
		Extract:  extract.DefaultOptions(),
		Registry: codeRegistry{"12045-O": {FullName: "Muhammad Ali", FatherName: "Ahmed Ali"}},
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)

	v := res.Items[0].Verification
	require.NotNil(t, v)
	assert.True(t, v.Found)
	assert.Equal(t, "12045-O", v.MatchedCode)
	assert.Equal(t, []string{"12045-D", "12045-O"}, v.Tried)
}

func TestResult_SaveResultsAndStats(t *testing.T) {
	dir := writeDocs(t, cardDocs(t, 1))
	res, err := ProcessBatch(context.Background(), []string{dir}, &Config{Extract: extract.DefaultOptions()})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, res.SaveResults(&buf, FormatCSV, "", false))
	assert.Contains(t, buf.String(), "12045-D|12045-O")

	out := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, res.SaveResults(&buf, FormatJSON, out, true))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"registration_codes"`)

	buf.Reset()
	res.PrintStats(&buf)
	assert.Contains(t, buf.String(), "Total files: 1")
	assert.Contains(t, buf.String(), "All fields found: 1")
}

func BenchmarkProcessBatch(b *testing.B) {
	card := testutil.ReadFixture(b, "card.json")
	dir := b.TempDir()
	for i := range 32 {
		if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("card-%02d.json", i)), card, 0o600); err != nil {
			b.Fatal(err)
		}
	}
	cfg := &Config{Workers: 4, Extract: extract.DefaultOptions()}
	ctx := context.Background()

	b.ResetTimer()
	for range b.N {
		if _, err := ProcessBatch(ctx, []string{dir}, cfg); err != nil {
			b.Fatal(err)
		}
	}
}
