package cards

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// DefaultRatingFormat tags ratings imported without an explicit format.
const DefaultRatingFormat = "14.0"

// UnratedLabel is shown for cards missing from the rating sheet.
const UnratedLabel = "NA"

// ratingRemap fixes tier labels that the community sheet uses as jokes.
var ratingRemap = map[string]string{
	"4 deliveries": "D+",
	"10 cylices":   "D",
}

// Rating is a draft tier for one card in one format.
type Rating struct {
	Format string `json:"format"`
	Name   string `json:"name"`
	Rating string `json:"rating"`
}

// Ratings maps card names to tier labels.
type Ratings map[string]string

// ParseRatings reads the tab-separated tier sheet. The first line is a
// header. Every other line is "tier<TAB>name<TAB>name...".
func ParseRatings(r io.Reader) (Ratings, error) {
	ratings := Ratings{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	first := true
	for scanner.Scan() {
		if first {
			first = false
			continue
		}
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) == 0 {
			continue
		}
		tier := strings.TrimSpace(fields[0])
		if remapped, ok := ratingRemap[tier]; ok {
			tier = remapped
		}
		for _, name := range fields[1:] {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			ratings[name] = tier
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ratings: %w", err)
	}
	return ratings, nil
}

// LoadRatings reads a rating sheet from disk.
func LoadRatings(path string) (Ratings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ratings: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return ParseRatings(f)
}

// Label returns the tier for name or UnratedLabel.
func (r Ratings) Label(name string) string {
	if tier, ok := r[name]; ok && tier != "" {
		return tier
	}
	return UnratedLabel
}

// List flattens the ratings for storage, sorted by name.
func (r Ratings) List(format string) []Rating {
	if format == "" {
		format = DefaultRatingFormat
	}
	out := make([]Rating, 0, len(r))
	for name, tier := range r {
		out = append(out, Rating{Format: format, Name: name, Rating: tier})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
