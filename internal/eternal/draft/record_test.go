package draft

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func sampleRecord() Record {
	return Record{
		GameID:        "abcd1234",
		PickID:        5,
		OfferedCards:  []string{"card alpha", "card beta", "card omega"},
		ImageURL:      "https://i.example.test/a.png",
		SelectionText: "1  [A ] x 0       card alpha\n",
	}
}

func TestReconcileNoStored(t *testing.T) {
	observed := sampleRecord()
	observed.ImageURL = ""

	merged, overwrite := Reconcile(observed, nil)
	assert.True(t, overwrite)
	assert.Equal(t, observed, merged)
}

func TestReconcileIdempotent(t *testing.T) {
	x := sampleRecord()
	stored := x.Clone()

	merged, overwrite := Reconcile(x, &stored)
	assert.False(t, overwrite)
	assert.Equal(t, x.OfferedCards, merged.OfferedCards)
	assert.Equal(t, x.ImageURL, merged.ImageURL)
}

func TestReconcilePreservesCommitment(t *testing.T) {
	stored := sampleRecord()
	stored.SelectedIndex = intPtr(3)

	observed := sampleRecord()
	observed.SelectedIndex = nil
	observed.OfferedCards = []string{"card beta", "card omega"}

	merged, overwrite := Reconcile(observed, &stored)
	assert.True(t, overwrite)
	require.NotNil(t, merged.SelectedIndex)
	assert.Equal(t, 3, *merged.SelectedIndex)

	// The merged record must not alias the stored pointer.
	*stored.SelectedIndex = 7
	assert.Equal(t, 3, *merged.SelectedIndex)
}

func TestReconcileMissingImage(t *testing.T) {
	stored := sampleRecord()
	stored.ImageURL = ""

	observed := sampleRecord()
	observed.ImageURL = ""

	_, overwrite := Reconcile(observed, &stored)
	assert.True(t, overwrite)
}

func TestReconcileKeepsStoredImageOnSkip(t *testing.T) {
	stored := sampleRecord()
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	stored.CreatedAt = created

	observed := sampleRecord()
	observed.ImageURL = ""

	merged, overwrite := Reconcile(observed, &stored)
	assert.False(t, overwrite)
	assert.Equal(t, stored.ImageURL, merged.ImageURL)
	assert.Equal(t, created, merged.CreatedAt)
}

func TestReconcileDoesNotMutateInputs(t *testing.T) {
	stored := sampleRecord()
	stored.SelectedIndex = intPtr(1)
	observed := sampleRecord()
	observed.OfferedCards = []string{"card beta"}

	merged, _ := Reconcile(observed, &stored)
	merged.OfferedCards[0] = "changed"

	assert.Nil(t, observed.SelectedIndex)
	assert.Equal(t, "card beta", observed.OfferedCards[0])
}

func TestRecordSelected(t *testing.T) {
	r := sampleRecord()
	_, ok := r.Selected()
	assert.False(t, ok)

	r.SelectedIndex = intPtr(1)
	name, ok := r.Selected()
	assert.True(t, ok)
	assert.Equal(t, "card beta", name)
	assert.Equal(t, "p1p5", r.Label())

	r.SelectedIndex = intPtr(9)
	_, ok = r.Selected()
	assert.False(t, ok)
}
