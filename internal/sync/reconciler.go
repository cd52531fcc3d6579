package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"branch-pos-service/internal/db"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type branch struct {
	ID          int64
	Name        string
	DatabaseURL string
}

// Reconciler copies staff accounts from the central directory into every
// active branch store, one direction only. A branch failure is logged and
// skipped; the next scheduled run picks it up again.
type Reconciler struct {
	central *pgxpool.Pool
	log     *zap.Logger

	mu    gosync.Mutex
	pools map[string]*pgxpool.Pool
}

func NewReconciler(central *pgxpool.Pool, log *zap.Logger) *Reconciler {
	return &Reconciler{
		central: central,
		log:     log,
		pools:   make(map[string]*pgxpool.Pool),
	}
}

// Schedule starts an interval job running RunOnce until the scheduler is
// shut down. The first run fires immediately so a fresh branch does not wait
// a full interval for its staff accounts.
func (r *Reconciler) Schedule(ctx context.Context, interval time.Duration) (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			r.RunOnce(ctx)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return nil, err
	}

	scheduler.Start()
	r.log.Info("staff reconciler scheduled", zap.Duration("interval", interval))
	return scheduler, nil
}

// RunOnce performs a single reconciliation pass across all active branches.
func (r *Reconciler) RunOnce(ctx context.Context) {
	runID := uuid.NewString()
	log := r.log.With(zap.String("runId", runID))
	start := time.Now()

	branches, err := r.loadBranches(ctx)
	if err != nil {
		log.Error("staff sync: loading branches failed", zap.Error(err))
		return
	}

	expected, err := fetchCentralUsers(ctx, r.central)
	if err != nil {
		log.Error("staff sync: loading central users failed", zap.Error(err))
		return
	}

	for _, b := range branches {
		if ctx.Err() != nil {
			log.Info("staff sync cancelled", zap.Error(ctx.Err()))
			return
		}
		inserted, updated, err := r.reconcileBranch(ctx, b, expected)
		if err != nil {
			log.Error("staff sync: branch failed",
				zap.String("branch", b.Name),
				zap.Error(err))
			continue
		}
		if inserted > 0 || updated > 0 {
			log.Info("staff sync: branch reconciled",
				zap.String("branch", b.Name),
				zap.Int("inserted", inserted),
				zap.Int("updated", updated))
		}
	}

	log.Info("staff sync completed",
		zap.Int("branches", len(branches)),
		zap.Duration("duration", time.Since(start)))
}

func (r *Reconciler) loadBranches(ctx context.Context) ([]branch, error) {
	rows, err := r.central.Query(ctx, `
		select id, name, database_url
		from branches
		where is_active
		order by id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var branches []branch
	for rows.Next() {
		var b branch
		if err := rows.Scan(&b.ID, &b.Name, &b.DatabaseURL); err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

func (r *Reconciler) reconcileBranch(ctx context.Context, b branch, expected []UserRecord) (inserted, updated int, err error) {
	pool, err := r.branchPool(ctx, b.DatabaseURL)
	if err != nil {
		return 0, 0, fmt.Errorf("connect branch %s: %w", b.Name, err)
	}

	actual, err := fetchBranchUsers(ctx, pool)
	if err != nil {
		return 0, 0, fmt.Errorf("load branch users: %w", err)
	}

	missing, changed := DiffUsers(expected, actual)

	for _, user := range missing {
		if _, err := pool.Exec(ctx, `
			insert into users (central_id, email, first_name, last_name, phone, language, role, is_active, password_hash, updated_at)
			values ($1,$2,$3,$4,$5,$6,$7,$8,$9, now())
		`, user.CentralID, user.Email, user.FirstName, user.LastName, user.Phone, user.Language, user.Role, user.IsActive, user.PasswordHash); err != nil {
			return inserted, updated, fmt.Errorf("insert user %d: %w", user.CentralID, err)
		}
		inserted++
	}

	for _, user := range changed {
		if _, err := pool.Exec(ctx, `
			update users
			set email = $2, first_name = $3, last_name = $4, phone = $5,
			    language = $6, role = $7, is_active = $8, password_hash = $9,
			    updated_at = now()
			where central_id = $1
		`, user.CentralID, user.Email, user.FirstName, user.LastName, user.Phone, user.Language, user.Role, user.IsActive, user.PasswordHash); err != nil {
			return inserted, updated, fmt.Errorf("update user %d: %w", user.CentralID, err)
		}
		updated++
	}

	return inserted, updated, nil
}

func (r *Reconciler) branchPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pool, ok := r.pools[databaseURL]; ok {
		return pool, nil
	}
	pool, err := db.NewPool(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	r.pools[databaseURL] = pool
	return pool, nil
}

// Close releases the cached branch pools. The central pool belongs to the
// caller.
func (r *Reconciler) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, pool := range r.pools {
		pool.Close()
	}
	r.pools = make(map[string]*pgxpool.Pool)
}

func fetchCentralUsers(ctx context.Context, pool *pgxpool.Pool) ([]UserRecord, error) {
	return scanUsers(ctx, pool, `
		select id, email, first_name, last_name, phone, language, role, is_active, password_hash
		from users
		order by id
	`)
}

func fetchBranchUsers(ctx context.Context, pool *pgxpool.Pool) ([]UserRecord, error) {
	return scanUsers(ctx, pool, `
		select central_id, email, first_name, last_name, phone, language, role, is_active, password_hash
		from users
		where central_id is not null
		order by central_id
	`)
}

func scanUsers(ctx context.Context, pool *pgxpool.Pool, query string) ([]UserRecord, error) {
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []UserRecord
	for rows.Next() {
		var u UserRecord
		if err := rows.Scan(&u.CentralID, &u.Email, &u.FirstName, &u.LastName, &u.Phone, &u.Language, &u.Role, &u.IsActive, &u.PasswordHash); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
