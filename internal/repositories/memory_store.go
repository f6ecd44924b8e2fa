package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"astromatch/internal/models"
)

type memoryData struct {
	users    map[string]models.User
	messages map[string]models.Message
	// seq records insertion order so equal timestamps sort stably.
	seq  map[string]int64
	next int64
}

func newMemoryData() *memoryData {
	return &memoryData{
		users:    make(map[string]models.User),
		messages: make(map[string]models.Message),
		seq:      make(map[string]int64),
	}
}

func (d *memoryData) clone() *memoryData {
	c := &memoryData{
		users:    make(map[string]models.User, len(d.users)),
		messages: make(map[string]models.Message, len(d.messages)),
		seq:      make(map[string]int64, len(d.seq)),
		next:     d.next,
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.messages {
		c.messages[k] = v
	}
	for k, v := range d.seq {
		c.seq[k] = v
	}
	return c
}

func (d *memoryData) stamp(id string) {
	d.next++
	d.seq[id] = d.next
}

// before orders records by creation time, then by insertion.
func (d *memoryData) before(aID string, aAt time.Time, bID string, bAt time.Time) bool {
	if !aAt.Equal(bAt) {
		return aAt.Before(bAt)
	}
	return d.seq[aID] < d.seq[bID]
}

// MemoryStore is an in-memory implementation of Store. Transactions work on
// a private copy that replaces the live data only when fn succeeds.
type MemoryStore struct {
	mu   sync.RWMutex
	data *memoryData
	// inTx marks a transactional view whose parent already holds mu.
	inTx bool
}

// NewMemoryStore creates a new, empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: newMemoryData()}
}

// Users returns the user repository.
func (s *MemoryStore) Users() UserRepository { return &memoryUserRepository{s: s} }

// Messages returns the message repository.
func (s *MemoryStore) Messages() MessageRepository { return &memoryMessageRepository{s: s} }

// WithinTx runs fn against a copy of the data and publishes the copy if fn
// returns nil. Nested calls join the outer transaction.
func (s *MemoryStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	view := &MemoryStore{data: s.data.clone(), inTx: true}
	if err := fn(view); err != nil {
		return err
	}
	s.data = view.data
	return nil
}

func (s *MemoryStore) read(ctx context.Context, fn func(d *memoryData) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.inTx {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	return fn(s.data)
}

func (s *MemoryStore) write(ctx context.Context, fn func(d *memoryData) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.data)
}

type memoryUserRepository struct {
	s *MemoryStore
}

// Create adds a new user.
func (r *memoryUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.s.write(ctx, func(d *memoryData) error {
		for _, u := range d.users {
			if u.Username == user.Username {
				return fmt.Errorf("username %s: %w", user.Username, ErrDuplicate)
			}
		}
		if user.ID == "" {
			user.ID = newID()
		}
		if _, ok := d.users[user.ID]; ok {
			return fmt.Errorf("user with ID %s: %w", user.ID, ErrDuplicate)
		}
		if user.CreatedAt.IsZero() {
			user.CreatedAt = time.Now()
		}
		d.users[user.ID] = *user
		d.stamp(user.ID)
		return nil
	})
}

// GetByID returns a user by their ID.
func (r *memoryUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var found models.User
	err := r.s.read(ctx, func(d *memoryData) error {
		u, ok := d.users[id]
		if !ok {
			return fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
		}
		found = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

// GetByUsername returns a user by exact username.
func (r *memoryUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var found *models.User
	err := r.s.read(ctx, func(d *memoryData) error {
		for _, u := range d.users {
			if u.Username == username {
				u := u
				found = &u
				return nil
			}
		}
		return fmt.Errorf("user with username %s: %w", username, ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// GetByIDs returns the users that exist among ids.
func (r *memoryUserRepository) GetByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	users := make([]models.User, 0, len(ids))
	err := r.s.read(ctx, func(d *memoryData) error {
		seen := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			if u, ok := d.users[id]; ok {
				users = append(users, u)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// GetAll returns all users, newest first.
func (r *memoryUserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.s.read(ctx, func(d *memoryData) error {
		users = make([]models.User, 0, len(d.users))
		for _, u := range d.users {
			users = append(users, u)
		}
		sort.Slice(users, func(i, j int) bool {
			return d.before(users[j].ID, users[j].CreatedAt, users[i].ID, users[i].CreatedAt)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// UpdatePhoto replaces the photo reference of a user.
func (r *memoryUserRepository) UpdatePhoto(ctx context.Context, id, photo string) error {
	return r.s.write(ctx, func(d *memoryData) error {
		u, ok := d.users[id]
		if !ok {
			return fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
		}
		u.ProfilePhoto = photo
		d.users[id] = u
		return nil
	})
}

// Delete removes a user by their ID.
func (r *memoryUserRepository) Delete(ctx context.Context, id string) error {
	return r.s.write(ctx, func(d *memoryData) error {
		if _, ok := d.users[id]; !ok {
			return fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
		}
		delete(d.users, id)
		delete(d.seq, id)
		return nil
	})
}

type memoryMessageRepository struct {
	s *MemoryStore
}

// Create adds a new message.
func (r *memoryMessageRepository) Create(ctx context.Context, msg *models.Message) error {
	return r.s.write(ctx, func(d *memoryData) error {
		if msg.ID == "" {
			msg.ID = newID()
		}
		if _, ok := d.messages[msg.ID]; ok {
			return fmt.Errorf("message with ID %s: %w", msg.ID, ErrDuplicate)
		}
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = time.Now()
		}
		d.messages[msg.ID] = *msg
		d.stamp(msg.ID)
		return nil
	})
}

// collect returns the messages accepted by keep, oldest first.
func (r *memoryMessageRepository) collect(ctx context.Context, keep func(m *models.Message) bool) ([]models.Message, error) {
	var msgs []models.Message
	err := r.s.read(ctx, func(d *memoryData) error {
		msgs = make([]models.Message, 0)
		for _, m := range d.messages {
			if keep(&m) {
				msgs = append(msgs, m)
			}
		}
		sort.Slice(msgs, func(i, j int) bool {
			return d.before(msgs[i].ID, msgs[i].CreatedAt, msgs[j].ID, msgs[j].CreatedAt)
		})
		return nil
	})
	return msgs, err
}

func reverse(msgs []models.Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}

// GetThread returns the two-party thread, oldest first.
func (r *memoryMessageRepository) GetThread(ctx context.Context, key models.PairKey) ([]models.Message, error) {
	return r.collect(ctx, key.Matches)
}

// GetByReceiver returns the messages addressed to receiverID, newest first.
func (r *memoryMessageRepository) GetByReceiver(ctx context.Context, receiverID string) ([]models.Message, error) {
	msgs, err := r.collect(ctx, func(m *models.Message) bool { return m.ReceiverID == receiverID })
	if err != nil {
		return nil, err
	}
	reverse(msgs)
	return msgs, nil
}

// GetRecent returns up to limit messages, newest first.
func (r *memoryMessageRepository) GetRecent(ctx context.Context, limit int) ([]models.Message, error) {
	msgs, err := r.collect(ctx, func(*models.Message) bool { return true })
	if err != nil {
		return nil, err
	}
	reverse(msgs)
	if limit >= 0 && len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

// Delete removes a message by its ID.
func (r *memoryMessageRepository) Delete(ctx context.Context, id string) error {
	return r.s.write(ctx, func(d *memoryData) error {
		if _, ok := d.messages[id]; !ok {
			return fmt.Errorf("message with ID %s: %w", id, ErrNotFound)
		}
		delete(d.messages, id)
		delete(d.seq, id)
		return nil
	})
}

// DeleteByParticipant removes every message userID sent or received.
func (r *memoryMessageRepository) DeleteByParticipant(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.s.write(ctx, func(d *memoryData) error {
		for id, m := range d.messages {
			if m.Involves(userID) {
				delete(d.messages, id)
				delete(d.seq, id)
				n++
			}
		}
		return nil
	})
	return n, err
}
