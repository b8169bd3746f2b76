package fieldmap

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const letterHeight = 792

func TestDefault_Validates(t *testing.T) {
	m := Default()
	require.NoError(t, m.Validate())
	assert.Len(t, m, 19)

	p, ok := m.Lookup("exception")
	require.True(t, ok)
	assert.Equal(t, KindConditionalGlyph, p.Kind)
}

func TestDefault_ReturnsCopy(t *testing.T) {
	m := Default()
	m[0].X = 0
	assert.Equal(t, 210.0, Default()[0].X)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		m       Map
		wantErr error
	}{
		{
			name: "duplicate key",
			m: Map{
				{Key: "a", Kind: KindPlainText, FontSize: 7},
				{Key: "a", Kind: KindPlainText, FontSize: 7},
			},
			wantErr: ErrDuplicateKey,
		},
		{
			name:    "unknown kind",
			m:       Map{{Key: "a", Kind: "barcode", FontSize: 7}},
			wantErr: ErrUnknownKind,
		},
		{
			name:    "text without font size",
			m:       Map{{Key: "a", Kind: KindFormattedDate}},
			wantErr: ErrFontSize,
		},
		{
			name: "glyph needs no font size",
			m:    Map{{Key: "a", Kind: KindConditionalGlyph}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "1985-07-09", want: "09/07/1985", ok: true},
		{in: "2026-01-31T00:00:00.000Z", want: "31/01/2026", ok: true},
		{in: "2026-01-31T23:30:00+05:30", want: "31/01/2026", ok: true},
		{in: "2026-01-31T08:00:00", want: "31/01/2026", ok: true},
		{in: "31/01/2026", ok: false},
		{in: "not a date", ok: false},
		{in: "  ", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, FormatDate(got))
			}
		})
	}
}

func TestLayout_RenderRules(t *testing.T) {
	values := map[string]string{
		"patientName": "Jane Doe",
		"patientDOB":  "1985-07-09",
		"signedBy":    "Dr. Rao",
		"signedAt":    time.Date(2026, 3, 4, 9, 5, 7, 0, time.UTC).Format(time.RFC3339),
	}

	got := Layout(values, Default(), letterHeight)

	want := []Stamp{
		{Key: "patientName", Kind: StampText, X: 210, Y: 605, FontSize: 7, Text: "Jane Doe"},
		{Key: "patientDOB", Kind: StampText, X: 210, Y: 587, FontSize: 7, Text: "09/07/1985"},
		{Key: "signedAt", Kind: StampText, X: 350, Y: 102, FontSize: 8, Text: "Date 04/03/2026 at 09:05:07"},
		{Key: "signedBy", Kind: StampText, X: 350, Y: 112, FontSize: 8, Text: "Digitally signed by Dr. Rao"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Layout() mismatch (-want +got):\n%s", diff)
	}
}

func TestLayout_AbsentEmptyAndUnparsableAreSkipped(t *testing.T) {
	values := map[string]string{
		"patientName":    "",
		"expirationDate": "soon",
		"signedAt":       "yesterday",
		"exception":      "maybe",
		"unknownField":   "ignored",
	}

	assert.Empty(t, Layout(values, Default(), letterHeight))
	assert.Empty(t, Layout(nil, Default(), letterHeight))
}

func TestLayout_GlyphOffsets(t *testing.T) {
	placements := Map{{Key: "exception", X: 419, Y: 647, Kind: KindConditionalGlyph}}

	on := Layout(map[string]string{"exception": "true"}, placements, letterHeight)
	off := Layout(map[string]string{"exception": "false"}, placements, letterHeight)

	require.Len(t, on, 1)
	require.Len(t, off, 1)

	assert.Equal(t, StampGlyph, on[0].Kind)
	assert.Equal(t, 419.0, on[0].X)
	assert.Equal(t, 145.0, on[0].Y)
	assert.Equal(t, GlyphSize, on[0].Size)

	assert.Equal(t, on[0].X, off[0].X)
	assert.Equal(t, on[0].Y+GlyphFalseOffset, off[0].Y)
}

func TestLayout_Deterministic(t *testing.T) {
	values := map[string]string{
		"patientName": "Jane Doe",
		"country":     "IN",
		"exception":   "false",
	}
	first := Layout(values, Default(), letterHeight)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Layout(values, Default(), letterHeight))
	}
}
