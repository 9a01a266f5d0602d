package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/azizikri/coupon-distributor/internal/domain"
	"github.com/azizikri/coupon-distributor/internal/repository"
)

type mockStore struct {
	tryClaimOneFn          func(ctx context.Context, typeID int, userID int64) (domain.Coupon, error)
	countUnclaimedFn       func(ctx context.Context, typeID int) (int64, error)
	insertCouponIfAbsentFn func(ctx context.Context, code string, typeID int, creator int64) (domain.Coupon, error)
	getCouponByIDFn        func(ctx context.Context, id int64) (domain.Coupon, error)
	listCouponsFn          func(ctx context.Context, filter domain.CouponFilter, offset, limit int) ([]domain.Coupon, error)
	countCouponsFn         func(ctx context.Context, filter domain.CouponFilter) (int64, error)
	updateCouponFn         func(ctx context.Context, id int64, upd repository.CouponUpdate) error
	deleteCouponFn         func(ctx context.Context, id int64) error
	listByTakerFn          func(ctx context.Context, taker int64, typeID *int, offset, limit int) ([]domain.Coupon, error)
	countByTakerFn         func(ctx context.Context, taker int64, typeID *int) (int64, error)
	createUserFn           func(ctx context.Context, user *domain.User) error
	getUserByIDFn          func(ctx context.Context, id int64) (domain.User, error)
	getUserByAccountFn     func(ctx context.Context, account string) (domain.User, error)
	listUsersFn            func(ctx context.Context, offset, limit int) ([]domain.User, error)
	countUsersFn           func(ctx context.Context) (int64, error)
	updateUserFn           func(ctx context.Context, id int64, upd repository.UserUpdate) error
	deleteUserFn           func(ctx context.Context, id int64) error
}

func (m *mockStore) TryClaimOne(ctx context.Context, typeID int, userID int64) (domain.Coupon, error) {
	if m.tryClaimOneFn != nil {
		return m.tryClaimOneFn(ctx, typeID, userID)
	}
	return domain.Coupon{}, domain.ErrStockExhausted
}

func (m *mockStore) CountUnclaimed(ctx context.Context, typeID int) (int64, error) {
	if m.countUnclaimedFn != nil {
		return m.countUnclaimedFn(ctx, typeID)
	}
	return 0, nil
}

func (m *mockStore) InsertCouponIfAbsent(ctx context.Context, code string, typeID int, creator int64) (domain.Coupon, error) {
	if m.insertCouponIfAbsentFn != nil {
		return m.insertCouponIfAbsentFn(ctx, code, typeID, creator)
	}
	return domain.Coupon{Code: code, Type: typeID, Creator: creator}, nil
}

func (m *mockStore) GetCouponByID(ctx context.Context, id int64) (domain.Coupon, error) {
	if m.getCouponByIDFn != nil {
		return m.getCouponByIDFn(ctx, id)
	}
	return domain.Coupon{}, domain.ErrNotFound
}

func (m *mockStore) ListCoupons(ctx context.Context, filter domain.CouponFilter, offset, limit int) ([]domain.Coupon, error) {
	if m.listCouponsFn != nil {
		return m.listCouponsFn(ctx, filter, offset, limit)
	}
	return nil, nil
}

func (m *mockStore) CountCoupons(ctx context.Context, filter domain.CouponFilter) (int64, error) {
	if m.countCouponsFn != nil {
		return m.countCouponsFn(ctx, filter)
	}
	return 0, nil
}

func (m *mockStore) UpdateUnclaimedCoupon(ctx context.Context, id int64, upd repository.CouponUpdate) error {
	if m.updateCouponFn != nil {
		return m.updateCouponFn(ctx, id, upd)
	}
	return nil
}

func (m *mockStore) DeleteUnclaimedCoupon(ctx context.Context, id int64) error {
	if m.deleteCouponFn != nil {
		return m.deleteCouponFn(ctx, id)
	}
	return nil
}

func (m *mockStore) ListCouponsByTaker(ctx context.Context, taker int64, typeID *int, offset, limit int) ([]domain.Coupon, error) {
	if m.listByTakerFn != nil {
		return m.listByTakerFn(ctx, taker, typeID, offset, limit)
	}
	return nil, nil
}

func (m *mockStore) CountCouponsByTaker(ctx context.Context, taker int64, typeID *int) (int64, error) {
	if m.countByTakerFn != nil {
		return m.countByTakerFn(ctx, taker, typeID)
	}
	return 0, nil
}

func (m *mockStore) CreateUser(ctx context.Context, user *domain.User) error {
	if m.createUserFn != nil {
		return m.createUserFn(ctx, user)
	}
	return nil
}

func (m *mockStore) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(ctx, id)
	}
	return domain.User{}, domain.ErrNotFound
}

func (m *mockStore) GetUserByAccount(ctx context.Context, account string) (domain.User, error) {
	if m.getUserByAccountFn != nil {
		return m.getUserByAccountFn(ctx, account)
	}
	return domain.User{}, domain.ErrNotFound
}

func (m *mockStore) ListUsers(ctx context.Context, offset, limit int) ([]domain.User, error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(ctx, offset, limit)
	}
	return nil, nil
}

func (m *mockStore) CountUsers(ctx context.Context) (int64, error) {
	if m.countUsersFn != nil {
		return m.countUsersFn(ctx)
	}
	return 0, nil
}

func (m *mockStore) UpdateUser(ctx context.Context, id int64, upd repository.UserUpdate) error {
	if m.updateUserFn != nil {
		return m.updateUserFn(ctx, id, upd)
	}
	return nil
}

func (m *mockStore) DeleteUser(ctx context.Context, id int64) error {
	if m.deleteUserFn != nil {
		return m.deleteUserFn(ctx, id)
	}
	return nil
}

var _ repository.Store = (*mockStore)(nil)

// memStore is a mutex-guarded in-memory Store. The claim path holds the lock
// for the whole select-and-mark, matching the atomicity the SQL statement
// provides in production.
type memStore struct {
	mu      sync.Mutex
	nextID  int64
	coupons map[int64]*domain.Coupon
	users   map[int64]*domain.User
}

func newMemStore() *memStore {
	return &memStore{
		nextID:  1,
		coupons: make(map[int64]*domain.Coupon),
		users:   make(map[int64]*domain.User),
	}
}

func (m *memStore) TryClaimOne(_ context.Context, typeID int, userID int64) (domain.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]int64, 0, len(m.coupons))
	for id := range m.coupons {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		c := m.coupons[id]
		if c.Type == typeID && !c.Claimed {
			now := time.Now()
			c.Claimed = true
			c.ClaimedBy = userID
			c.ClaimedAt = &now
			return *c, nil
		}
	}
	return domain.Coupon{}, domain.ErrStockExhausted
}

func (m *memStore) CountUnclaimed(_ context.Context, typeID int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, c := range m.coupons {
		if c.Type == typeID && !c.Claimed {
			count++
		}
	}
	return count, nil
}

func (m *memStore) InsertCouponIfAbsent(_ context.Context, code string, typeID int, creator int64) (domain.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.coupons {
		if c.Code == code {
			return domain.Coupon{}, domain.ErrDuplicateCoupon
		}
	}
	c := &domain.Coupon{
		ID:        m.nextID,
		Code:      code,
		Type:      typeID,
		Creator:   creator,
		CreatedAt: time.Now(),
	}
	m.nextID++
	m.coupons[c.ID] = c
	return *c, nil
}

func (m *memStore) GetCouponByID(_ context.Context, id int64) (domain.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.coupons[id]; ok {
		return *c, nil
	}
	return domain.Coupon{}, domain.ErrNotFound
}

func (m *memStore) ListCoupons(_ context.Context, filter domain.CouponFilter, offset, limit int) ([]domain.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []domain.Coupon
	for _, c := range m.coupons {
		if filter.Type != nil && c.Type != *filter.Type {
			continue
		}
		if filter.Claimed != nil && c.Claimed != *filter.Claimed {
			continue
		}
		all = append(all, *c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *memStore) CountCoupons(_ context.Context, filter domain.CouponFilter) (int64, error) {
	coupons, err := m.ListCoupons(context.Background(), filter, 0, int(^uint(0)>>1))
	return int64(len(coupons)), err
}

func (m *memStore) UpdateUnclaimedCoupon(_ context.Context, id int64, upd repository.CouponUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.coupons[id]
	if !ok {
		return domain.ErrNotFound
	}
	if c.Claimed {
		return domain.ErrAlreadyClaimed
	}
	if upd.Code != nil {
		for _, other := range m.coupons {
			if other.ID != id && other.Code == *upd.Code {
				return domain.ErrDuplicateCoupon
			}
		}
		c.Code = *upd.Code
	}
	if upd.Type != nil {
		c.Type = *upd.Type
	}
	return nil
}

func (m *memStore) DeleteUnclaimedCoupon(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.coupons[id]
	if !ok {
		return domain.ErrNotFound
	}
	if c.Claimed {
		return domain.ErrAlreadyClaimed
	}
	delete(m.coupons, id)
	return nil
}

func (m *memStore) ListCouponsByTaker(_ context.Context, taker int64, typeID *int, offset, limit int) ([]domain.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []domain.Coupon
	for _, c := range m.coupons {
		if !c.Claimed || c.ClaimedBy != taker {
			continue
		}
		if typeID != nil && c.Type != *typeID {
			continue
		}
		all = append(all, *c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *memStore) CountCouponsByTaker(ctx context.Context, taker int64, typeID *int) (int64, error) {
	coupons, err := m.ListCouponsByTaker(ctx, taker, typeID, 0, int(^uint(0)>>1))
	return int64(len(coupons)), err
}

func (m *memStore) CreateUser(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Account == user.Account {
			return domain.ErrDuplicateAccount
		}
	}
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.nextID++
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *memStore) GetUserByID(_ context.Context, id int64) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return *u, nil
	}
	return domain.User{}, domain.ErrNotFound
}

func (m *memStore) GetUserByAccount(_ context.Context, account string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Account == account {
			return *u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (m *memStore) ListUsers(_ context.Context, offset, limit int) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []domain.User
	for _, u := range m.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *memStore) CountUsers(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

func (m *memStore) UpdateUser(_ context.Context, id int64, upd repository.UserUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	if upd.Account != nil {
		for _, other := range m.users {
			if other.ID != id && other.Account == *upd.Account {
				return domain.ErrDuplicateAccount
			}
		}
		u.Account = *upd.Account
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.Capabilities != nil {
		u.Capabilities = *upd.Capabilities
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (m *memStore) DeleteUser(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

var _ repository.Store = (*memStore)(nil)

// recordingAudit captures published events for assertions.
type recordingAudit struct {
	mu      sync.Mutex
	claims  []int64
	imports []domain.ImportSummary
}

func (r *recordingAudit) ClaimRecorded(_ context.Context, userID int64, _ domain.Coupon) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claims = append(r.claims, userID)
}

func (r *recordingAudit) BatchImported(_ context.Context, _ int64, _ int, summary domain.ImportSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.imports = append(r.imports, summary)
}
