package pdf

import (
	"bytes"
	"compress/zlib"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecologics/collection-service/internal/model"
)

func TestGeneratePDF(t *testing.T) {
	report := model.ActivityReport{
		PeriodStart: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		TotalKg:     25,
		Entries: []model.ActivityEntry{
			{
				ActivityRecord: model.ActivityRecord{
					MassKg:      25,
					Category:    "Plastico",
					Evidence:    model.EvidenceCompleted,
					FinalizedAt: time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC),
				},
				RequesterName: "Maria Lopez",
				CollectorName: "Luis Mora",
			},
		},
		Categories: map[string]model.CategoryStat{
			"Plastico": {Count: 1, Kg: 25},
		},
	}

	content, err := NewGenerator().Generate(report)
	require.NoError(t, err)
	require.NotEmpty(t, content)
	assert.Equal(t, "%PDF", string(content[:4]))
}

// Core fonts are single-byte cp1252, so accented text must reach the
// content stream as translated 8-bit characters, not raw UTF-8 pairs.
func TestGeneratePDFTranslatesAccentedText(t *testing.T) {
	report := model.ActivityReport{
		PeriodStart: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		TotalKg:     25,
		Entries: []model.ActivityEntry{
			{
				ActivityRecord: model.ActivityRecord{
					MassKg:      25,
					Category:    "Plástico",
					Evidence:    model.EvidenceCompleted,
					FinalizedAt: time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC),
				},
				RequesterName: "María López",
				CollectorName: "Luis Mora",
			},
		},
		Categories: map[string]model.CategoryStat{
			"Plástico": {Count: 1, Kg: 25},
		},
	}

	content, err := NewGenerator().Generate(report)
	require.NoError(t, err)

	streams := decodedStreams(t, content)
	assert.True(t, bytes.Contains(streams, []byte("Pl\xe1stico")), "category should be cp1252-encoded")
	assert.True(t, bytes.Contains(streams, []byte("Mar\xeda L\xf3pez")), "requester name should be cp1252-encoded")
	assert.False(t, bytes.Contains(streams, []byte("Pl\xc3\xa1stico")), "raw UTF-8 must not reach the page")
}

// decodedStreams concatenates every stream object, inflating the
// flate-compressed ones, so tests can assert on the page text.
func decodedStreams(t *testing.T, content []byte) []byte {
	t.Helper()
	var out bytes.Buffer
	rest := content
	for {
		i := bytes.Index(rest, []byte("stream\n"))
		if i < 0 {
			break
		}
		if i >= 3 && bytes.Equal(rest[i-3:i], []byte("end")) {
			rest = rest[i+len("stream\n"):]
			continue
		}
		rest = rest[i+len("stream\n"):]
		end := bytes.Index(rest, []byte("endstream"))
		if end < 0 {
			break
		}
		raw := bytes.TrimSuffix(rest[:end], []byte("\n"))
		if reader, err := zlib.NewReader(bytes.NewReader(raw)); err == nil {
			_, _ = io.Copy(&out, reader)
			reader.Close()
		} else {
			out.Write(raw)
		}
		rest = rest[end+len("endstream"):]
	}
	return out.Bytes()
}

func TestGeneratePDFEmptyReport(t *testing.T) {
	content, err := NewGenerator().Generate(model.ActivityReport{
		Categories: map[string]model.CategoryStat{},
	})
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(content[:4]))
}
