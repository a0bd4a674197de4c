package export

import (
	"FieldScribe/internal/analysis"
	"FieldScribe/internal/model"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntryView(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	e := &model.Entry{
		Project:     "Clinic",
		Title:       "Visit",
		Observation: "obs",
		CreatedAt:   time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC),
		Tags:        []model.Tag{{Name: "a"}, {Name: "b"}},
		Media:       []model.Media{{Filename: "x.png", OriginalName: "ward.png", MediaType: "image/png"}, {Filename: "y.mp3", MediaType: "audio/mpeg"}},
	}
	v := NewEntryView(e, loc)
	assert.Equal(t, "March 1, 2024 at 10:30 AM EST", v.Created)
	assert.Equal(t, []string{"a", "b"}, v.Tags)
	require.Len(t, v.Media, 2)
	assert.Equal(t, "ward.png", v.Media[0].Name)
	assert.Equal(t, "y.mp3", v.Media[1].Name)

	assert.Equal(t, "March 1, 2024 at 3:30 PM UTC", NewEntryView(e, nil).Created)
}

func TestPDFRenderer_RenderEntry(t *testing.T) {
	r := NewPDFRenderer()
	out, err := r.RenderEntry(EntryView{
		Project:     "Clinic",
		Title:       "Café visit",
		Observation: strings.Repeat("long observation text ", 400),
		Reflection:  "thoughts",
		Created:     "March 1, 2024",
		Tags:        []string{"work"},
		Media:       []MediaRef{{Name: "ward.png", MediaType: "image/png"}},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFRenderer_RenderAnalysis(t *testing.T) {
	r := NewPDFRenderer()
	out, err := r.RenderAnalysis(analysis.Summary{
		MainThemes: []string{"care"},
		Emotions:   []string{"calm"},
		Summary:    "steady",
	}, time.Now())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
