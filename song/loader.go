package song

import (
	"context"
	"fmt"

	"github.com/kmorel/notecast/fetch"
	"github.com/kmorel/notecast/midi"
	"github.com/kmorel/notecast/model"
)

// Loader turns a SongRef into a normalized Song: retrieve bytes, decode,
// substitute the caller's label when the file embeds no title.
type Loader interface {
	Load(ctx context.Context, ref model.SongRef) (*model.Song, error)
}

// NewLoader returns a Loader backed by the given fetcher.
func NewLoader(f fetch.Fetcher) Loader {
	return &loader{fetcher: f}
}

type loader struct {
	fetcher fetch.Fetcher
}

func (l *loader) Load(ctx context.Context, ref model.SongRef) (*model.Song, error) {
	data, err := l.fetcher.Fetch(ctx, ref.URL)
	if err != nil {
		return nil, fmt.Errorf("retrieving %v: %w", ref.URL, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	decoded, err := midi.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %v: %w", ref.URL, err)
	}
	if decoded.Title == "" {
		decoded.Title = ref.Label
	}
	return decoded, nil
}
