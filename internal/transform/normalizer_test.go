package transform

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"fashionetl/internal/model"
)

const ts = "2024-05-25 10:00:00"

func raw(title, price, rating, colors, size, gender string) model.RawProduct {
	return model.RawProduct{
		Title:     model.Ptr(title),
		Price:     model.Ptr(price),
		Rating:    model.Ptr(rating),
		Colors:    model.Ptr(colors),
		Size:      model.Ptr(size),
		Gender:    model.Ptr(gender),
		Timestamp: ts,
	}
}

func sampleBatch() []model.RawProduct {
	return []model.RawProduct{
		raw("T-shirt Keren", "$25.00", "Rating: ⭐ 4.5 / 5", "3 Colors", "Size: L", "Gender: Men"),
		raw("Unknown Product", "$10.00", "Rating: ⭐ Invalid Rating / 5", "2 Colors", "Size: M", "Gender: Unisex"),
		raw("Jaket Bagus", "$50.99", "4.0 / 5", "5 Colors", "Size: XL", "Gender: Women"),
		raw("Celana Panjang", "Price Unavailable", "Rating: Not Rated", "1 Color", "Size: S", "Gender: Men"),
		raw("T-shirt Keren", "$25.00", "Rating: ⭐ 4.5 / 5", "3 Colors", "Size: L", "Gender: Men"),
		raw("dos.jpeg", "$30.00", "3.5/5", "2 Colors", "Size: M", "Gender: Unisex"),
		raw("Kemeja Polos", "$15.50", "invalid.png", "4 Colors", "Size: M", "Gender: Men"),
		raw("Valid Jacket", "$40.00", "Rating: 4.2 / 5", "1 Color", "Size: XL", "Gender: Unisex"),
	}
}

type recorder struct {
	stages   []Stage
	counts   map[Stage]int
	coercion []error
}

func newRecorder() *recorder {
	return &recorder{counts: map[Stage]int{}}
}

func (r *recorder) StageDone(stage Stage, rows int) {
	r.stages = append(r.stages, stage)
	r.counts[stage] = rows
}

func (r *recorder) CoercionFailed(err error) {
	r.coercion = append(r.coercion, err)
}

func TestNormalizeSampleBatch(t *testing.T) {
	rec := newRecorder()
	n := NewNormalizer(WithObserver(rec))

	got := n.Normalize(sampleBatch())

	want := []model.Product{
		{Title: "T-shirt Keren", Price: idr(25.00), Rating: 4.5, Colors: 3, Size: "L", Gender: "Men", Timestamp: ts},
		{Title: "Jaket Bagus", Price: idr(50.99), Rating: 4.0, Colors: 5, Size: "XL", Gender: "Women", Timestamp: ts},
		{Title: "Valid Jacket", Price: idr(40.00), Rating: 4.2, Colors: 1, Size: "XL", Gender: "Unisex", Timestamp: ts},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Normalize mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, []Stage{StageRaw, StageTitle, StageDedupe, StageComplete, StageFinal}, rec.stages)
	require.Equal(t, 8, rec.counts[StageRaw])
	require.Equal(t, 6, rec.counts[StageTitle])
	require.Equal(t, 5, rec.counts[StageDedupe])
	require.Equal(t, 3, rec.counts[StageComplete])
	require.Equal(t, 3, rec.counts[StageFinal])
	require.Empty(t, rec.coercion)
}

func TestNormalizeInvariants(t *testing.T) {
	got := NewNormalizer().Normalize(sampleBatch())

	seen := map[string]bool{}
	for _, p := range got {
		require.NotEmpty(t, p.Title)
		require.Positive(t, p.Price)
		require.NotEmpty(t, p.Size)
		require.NotEmpty(t, p.Gender)
		require.GreaterOrEqual(t, p.Colors, 0)
		require.Equal(t, ts, p.Timestamp)

		key := fmt.Sprintf("%s|%v|%v|%d|%s|%s", p.Title, p.Price, p.Rating, p.Colors, p.Size, p.Gender)
		require.False(t, seen[key], "duplicate product %q", key)
		seen[key] = true
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	n := NewNormalizer()

	got := n.Normalize(nil)
	require.NotNil(t, got)
	require.Empty(t, got)

	got = n.Normalize([]model.RawProduct{})
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestNormalizeAllTitlesInvalid(t *testing.T) {
	rec := newRecorder()
	batch := []model.RawProduct{
		{Title: model.Ptr("Unknown Product"), Price: model.Ptr("$10"), Timestamp: "ts1"},
		{Title: model.Ptr("image.jpg"), Price: model.Ptr("$20"), Timestamp: "ts2"},
		{Title: nil, Price: model.Ptr("$30"), Timestamp: "ts3"},
	}

	got := NewNormalizer(WithObserver(rec)).Normalize(batch)

	require.NotNil(t, got)
	require.Empty(t, got)
	require.Equal(t, []Stage{StageRaw, StageTitle}, rec.stages, "stops right after the title pass")
}

func TestNormalizeDropsBlankTitles(t *testing.T) {
	batch := []model.RawProduct{
		raw("   ", "$10.00", "4.0", "1 Color", "M", "Men"),
		raw("", "$12.00", "4.0", "1 Color", "M", "Men"),
		raw("Denim Jacket", "$10.00", "4.0", "1 Color", "M", "Men"),
	}

	got := NewNormalizer().Normalize(batch)

	require.Len(t, got, 1)
	require.Equal(t, "Denim Jacket", got[0].Title)
}

func TestNormalizeAllIncomplete(t *testing.T) {
	batch := []model.RawProduct{
		{Title: model.Ptr("Valid Title 1"), Price: model.Ptr("Price Unavailable"), Rating: model.Ptr("4.5 / 5"),
			Colors: model.Ptr("3 Colors"), Size: model.Ptr("L"), Gender: model.Ptr("Men"), Timestamp: "ts1"},
		{Title: model.Ptr("Valid Title 2"), Price: model.Ptr("$20"), Rating: model.Ptr("Invalid Rating"),
			Colors: model.Ptr("Many Colors"), Size: model.Ptr("Size: "), Gender: nil, Timestamp: "ts2"},
	}

	got := NewNormalizer().Normalize(batch)

	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestNormalizeDuplicatesKeepFirst(t *testing.T) {
	first := raw("Hoodie", "$12.00", "4.1 / 5", "2 Colors", "Size: M", "Gender: Men")
	first.Timestamp = "first"
	second := raw("  Hoodie ", "$12.00", "Rating: 4.1", "2 colors", "M", "Men")
	second.Timestamp = "second"

	got := NewNormalizer().Normalize([]model.RawProduct{first, second})

	require.Len(t, got, 1)
	require.Equal(t, "first", got[0].Timestamp, "timestamp is not part of the duplicate key")
}

func TestNormalizeMissingValuesCompareEqual(t *testing.T) {
	rec := newRecorder()
	a := raw("Scarf", "Price Unavailable", "4.0", "1 Color", "S", "Women")
	b := raw("Scarf", "Price Unavailable", "4.0", "1 Color", "S", "Women")

	got := NewNormalizer(WithObserver(rec)).Normalize([]model.RawProduct{a, b})

	require.Empty(t, got)
	require.Equal(t, 1, rec.counts[StageDedupe])
	require.Equal(t, 0, rec.counts[StageComplete])
}

func TestNormalizeCoercionFailureKeepsValues(t *testing.T) {
	rec := newRecorder()
	batch := []model.RawProduct{
		raw("Good Shirt", "$10.00", "4.0", "2 Colors", "M", "Men"),
		raw("Bad \xff Shirt", "$11.00", "3.0", "1 Color", "L", "Women"),
	}

	got := NewNormalizer(WithObserver(rec)).Normalize(batch)

	require.Len(t, got, 2)
	require.Equal(t, "Bad \xff Shirt", got[1].Title)
	require.Len(t, rec.coercion, 1)
	require.ErrorIs(t, rec.coercion[0], errCoercion)
	require.Contains(t, rec.coercion[0].Error(), "title is not valid UTF-8")
}

func TestNormalizeDeterministic(t *testing.T) {
	n := NewNormalizer()
	first := n.Normalize(sampleBatch())
	second := n.Normalize(sampleBatch())

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("runs differ (-first +second):\n%s", diff)
	}
}

func TestNormalizeWorkersPreserveOrder(t *testing.T) {
	var batch []model.RawProduct
	for i := 0; i < 200; i++ {
		batch = append(batch, raw(
			fmt.Sprintf("Item %d", i%150),
			fmt.Sprintf("$%d.50", i%150+1),
			"4.0 / 5", "2 Colors", "Size: M", "Gender: Unisex",
		))
	}

	sequential := NewNormalizer().Normalize(batch)
	parallel := NewNormalizer(WithWorkers(8)).Normalize(batch)

	require.Len(t, sequential, 150)
	if diff := cmp.Diff(sequential, parallel); diff != "" {
		t.Fatalf("worker pool changed output (-seq +par):\n%s", diff)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := NewNormalizer(WithRate(1))
	once := n.Normalize(sampleBatch())
	require.NotEmpty(t, once)

	back := make([]model.RawProduct, len(once))
	for i, p := range once {
		back[i] = model.RawProduct{
			Title:     model.Ptr(p.Title),
			Price:     model.Ptr("$" + strconv.FormatFloat(p.Price, 'f', -1, 64)),
			Rating:    model.Ptr(strconv.FormatFloat(p.Rating, 'f', -1, 64)),
			Colors:    model.Ptr(strconv.Itoa(p.Colors)),
			Size:      model.Ptr(p.Size),
			Gender:    model.Ptr(p.Gender),
			Timestamp: p.Timestamp,
		}
	}

	twice := n.Normalize(back)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("second pass changed the batch (-once +twice):\n%s", diff)
	}
}
