// Package seed fills a database with random marketplace data for local
// development.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/Skryldev/sharebnb/auth"
	"github.com/Skryldev/sharebnb/db"
	"github.com/Skryldev/sharebnb/models"
	"github.com/Skryldev/sharebnb/repo"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "password"

// Options controls Run.
type Options struct {
	// Count is the number of rows written to each table.
	Count  int
	Hasher auth.PasswordHasher
	// Rand defaults to a time-seeded generator.
	Rand   *rand.Rand
	Logger *slog.Logger
}

// Counts reports how many rows Run wrote per table.
type Counts struct {
	Users, Listings, Photos, Bookings, BookableDays, Conversations, Messages int
}

const (
	sqlInsertPhoto        = `INSERT INTO photos (listing_id, photo_url, created_at) VALUES ($1, $2, $3)`
	sqlInsertBooking      = `INSERT INTO bookings (owner_id, renter_id, listing_id) VALUES ($1, $2, $3) RETURNING id`
	sqlInsertBookableDay  = `INSERT INTO bookable_days (day, available, listing_id, booking_id) VALUES ($1, $2, $3, $4)`
	sqlInsertConversation = `INSERT INTO conversations (renter_id, owner_id, listing_id) VALUES ($1, $2, $3) RETURNING id`
	sqlInsertMessage      = `INSERT INTO messages (conversation_id, sender_id, body) VALUES ($1, $2, $3)`
)

// Run writes opts.Count rows to every table inside one transaction. Usernames
// continue after the existing user count so repeated runs do not collide.
func Run(ctx context.Context, d *db.DB, opts Options) (Counts, error) {
	if opts.Count <= 0 {
		return Counts{}, fmt.Errorf("seed: count must be positive, got %d", opts.Count)
	}
	rng := opts.Rand
	if rng == nil {
		now := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(now, now>>1))
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	hash, err := opts.Hasher.Hash(DefaultPassword)
	if err != nil {
		return Counts{}, err
	}

	g := &generator{rng: rng}
	var counts Counts
	err = d.ExecTx(ctx, func(tx *db.Tx) error {
		users := repo.NewUserRepo(tx)
		listings := repo.NewListingRepo(tx)

		existing, err := users.Count(ctx)
		if err != nil {
			return err
		}
		params := make([]models.CreateUserParams, opts.Count)
		for i := range params {
			params[i] = g.user(int(existing)+i, hash)
		}
		created, err := users.BatchInsert(ctx, params)
		if err != nil {
			return fmt.Errorf("users: %w", err)
		}
		userIDs := make([]int64, len(created))
		for i, u := range created {
			userIDs[i] = u.ID
		}
		counts.Users = len(created)

		listingIDs := make([]int64, 0, opts.Count)
		for i := 0; i < opts.Count; i++ {
			l, err := listings.Create(ctx, g.listing(i, g.pick(userIDs)))
			if err != nil {
				return fmt.Errorf("listings: %w", err)
			}
			listingIDs = append(listingIDs, l.ID)
		}
		counts.Listings = len(listingIDs)

		now := time.Now().UTC()
		photos := make([]int64, opts.Count)
		if err := db.BatchExecTx(tx, ctx, sqlInsertPhoto, photos, func(int64) []any {
			return []any{g.pick(listingIDs), g.photoURL(), now}
		}); err != nil {
			return fmt.Errorf("photos: %w", err)
		}
		counts.Photos = len(photos)

		bookingIDs, err := insertReturningIDs(ctx, tx, sqlInsertBooking, opts.Count, func() []any {
			return []any{g.pick(userIDs), g.pick(userIDs), g.pick(listingIDs)}
		})
		if err != nil {
			return fmt.Errorf("bookings: %w", err)
		}
		counts.Bookings = len(bookingIDs)

		days := make([]int64, opts.Count)
		if err := db.BatchExecTx(tx, ctx, sqlInsertBookableDay, days, func(int64) []any {
			return []any{g.futureDay(now), g.rng.IntN(2) == 0, g.pick(listingIDs), g.pick(bookingIDs)}
		}); err != nil {
			return fmt.Errorf("bookable days: %w", err)
		}
		counts.BookableDays = len(days)

		conversationIDs, err := insertReturningIDs(ctx, tx, sqlInsertConversation, opts.Count, func() []any {
			return []any{g.pick(userIDs), g.pick(userIDs), g.pick(listingIDs)}
		})
		if err != nil {
			return fmt.Errorf("conversations: %w", err)
		}
		counts.Conversations = len(conversationIDs)

		messages := make([]int64, opts.Count)
		if err := db.BatchExecTx(tx, ctx, sqlInsertMessage, messages, func(int64) []any {
			return []any{g.pick(conversationIDs), g.pick(userIDs), g.sentences(2)}
		}); err != nil {
			return fmt.Errorf("messages: %w", err)
		}
		counts.Messages = len(messages)
		return nil
	})
	if err != nil {
		return Counts{}, fmt.Errorf("seed: %w", err)
	}

	logger.InfoContext(ctx, "seed: completed",
		"users", counts.Users, "listings", counts.Listings, "photos", counts.Photos,
		"bookings", counts.Bookings, "bookable_days", counts.BookableDays,
		"conversations", counts.Conversations, "messages", counts.Messages)
	return counts, nil
}

func insertReturningIDs(ctx context.Context, tx *db.Tx, query string, n int, argsFn func() []any) ([]int64, error) {
	stmt, err := tx.Prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		var id int64
		if err := stmt.QueryRow(ctx, argsFn()...).Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Random data
// ─────────────────────────────────────────────────────────────────────────────

var (
	firstNames = []string{"Ada", "Grace", "Linus", "Ken", "Barbara", "Dennis", "Margaret", "Alan", "Radia", "Edsger"}
	lastNames  = []string{"Lovelace", "Hopper", "Torvalds", "Thompson", "Liskov", "Ritchie", "Hamilton", "Turing", "Perlman", "Dijkstra"}
	streets    = []string{"Main St", "Oak Ave", "Pine Rd", "Maple Dr", "Cedar Ln", "Elm St", "Lake View", "Hill Crest"}
	cities     = []string{"Portland", "Austin", "Denver", "Boston", "Oakland", "Madison", "Asheville", "Tucson"}
	states     = []string{"OR", "TX", "CO", "MA", "CA", "WI", "NC", "AZ"}
	genres     = []string{"Jazz", "Blues", "Rock", "Folk", "Classical", "Hip Hop", "Country", "Electronic"}
	words      = strings.Fields("sunny quiet spacious cozy bright garden studio balcony view kitchen " +
		"parking downtown walk park lake river loft porch fireplace modern")
)

type generator struct{ rng *rand.Rand }

func (g *generator) pick(ids []int64) int64 { return ids[g.rng.IntN(len(ids))] }

func (g *generator) word(list []string) string { return list[g.rng.IntN(len(list))] }

func (g *generator) user(i int, hash string) models.CreateUserParams {
	first, last := g.word(firstNames), g.word(lastNames)
	return models.CreateUserParams{
		Username:     fmt.Sprintf("username%d", i),
		PasswordHash: hash,
		FirstName:    first,
		LastName:     last,
		Email:        strings.ToLower(fmt.Sprintf("%s.%s%d@example.com", first, last, i)),
	}
}

func (g *generator) listing(i int, ownerID int64) models.CreateListingParams {
	return models.CreateListingParams{
		Name:        fmt.Sprintf("ListingName%d", i),
		Description: g.sentences(3),
		Price:       20 + g.rng.IntN(81),
		Street:      fmt.Sprintf("%d %s", 1+g.rng.IntN(9999), g.word(streets)),
		City:        g.word(cities),
		State:       g.word(states),
		Zip:         fmt.Sprintf("%05d", g.rng.IntN(100000)),
		Genre:       g.word(genres),
		OwnerID:     ownerID,
	}
}

func (g *generator) photoURL() string {
	return fmt.Sprintf("https://picsum.photos/seed/%d/800/600", g.rng.IntN(1_000_000))
}

func (g *generator) futureDay(now time.Time) time.Time {
	d := now.AddDate(0, 0, 1+g.rng.IntN(365))
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func (g *generator) sentences(n int) string {
	out := make([]string, n)
	for i := range out {
		ws := make([]string, 5+g.rng.IntN(6))
		for j := range ws {
			ws[j] = g.word(words)
		}
		s := strings.Join(ws, " ")
		out[i] = strings.ToUpper(s[:1]) + s[1:] + "."
	}
	return strings.Join(out, " ")
}
