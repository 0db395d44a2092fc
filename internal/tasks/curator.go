package tasks

import (
	"math/rand"
	"time"

	"github.com/hazelrye/deepcuts/internal/models"
	"github.com/hazelrye/deepcuts/internal/shared"
)

// Pool is the candidate track set of one artist, as produced by
// [PoolBuilder.Build].
type Pool struct {
	ArtistID string
	Tracks   []models.Track
}

// Curator draws a balanced, deduplicated, shuffled playlist from a set of
// artist pools. The randomness source is injectable for deterministic tests.
type Curator struct {
	rng       *rand.Rand
	minTracks int
	maxTracks int
}

// NewCurator creates a Curator. A nil rng falls back to a time-seeded
// source; an empty or inverted size range falls back to [20,30].
func NewCurator(rng *rand.Rand, cfg shared.CurationConfig) *Curator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	minTracks, maxTracks := cfg.MinTracks, cfg.MaxTracks
	if minTracks <= 0 || maxTracks < minTracks {
		minTracks, maxTracks = 20, 30
	}

	return &Curator{rng: rng, minTracks: minTracks, maxTracks: maxTracks}
}

// Curate distributes selections across the pools, in the order supplied:
// a per-artist quota of target/len(pools) first, then a mixed draw from the
// leftovers for any unfilled slots, then a final shuffle. Sampling is
// without replacement and deduplicates by canonical track identity, so the
// result never holds the same song twice even when pools overlap through
// appears_on collaborations.
func (c *Curator) Curate(pools []Pool, progress chan<- ProgressUpdate) models.CuratedPlaylist {
	target := c.minTracks + c.rng.Intn(c.maxTracks-c.minTracks+1)
	playlist := models.CuratedPlaylist{Target: target, CreatedAt: time.Now().UTC()}

	if len(pools) == 0 {
		return playlist
	}

	quota := target / len(pools)
	seen := make(map[string]bool)
	selected := make([]models.Track, 0, target)
	remaining := target

	for i, pool := range pools {
		if remaining <= 0 {
			break
		}

		want := quota
		if len(pool.Tracks) < want {
			want = len(pool.Tracks)
		}

		drawn := c.sample(pool.Tracks, want, seen)
		selected = append(selected, drawn...)
		remaining -= len(drawn)

		sendProgress(progress, drawUpdate(i+1, len(pools), pool.ArtistID, len(drawn)))
	}

	if remaining > 0 {
		var leftovers []models.Track
		for _, pool := range pools {
			for _, track := range pool.Tracks {
				if !seen[track.Identity()] {
					leftovers = append(leftovers, track)
				}
			}
		}

		drawn := c.sample(leftovers, remaining, seen)
		selected = append(selected, drawn...)
	}

	c.rng.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})

	// Defensive: the draws above cannot overshoot by construction.
	if len(selected) > target {
		selected = selected[:target]
	}

	playlist.Tracks = selected
	return playlist
}

// sample draws up to want tracks uniformly at random without replacement,
// skipping identities already in seen and recording the ones it takes.
func (c *Curator) sample(tracks []models.Track, want int, seen map[string]bool) []models.Track {
	if want <= 0 || len(tracks) == 0 {
		return nil
	}

	out := make([]models.Track, 0, want)
	for _, idx := range c.rng.Perm(len(tracks)) {
		if len(out) == want {
			break
		}

		track := tracks[idx]
		id := track.Identity()
		if seen[id] {
			continue
		}

		seen[id] = true
		out = append(out, track)
	}

	return out
}
