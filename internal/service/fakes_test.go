package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/repository"
	"github.com/andresuchdata/eximdesk/internal/storage"
)

type fakeJobRepo struct {
	mu            sync.Mutex
	nextID        int64
	jobs          map[int64]*domain.Job
	invoices      map[int64][]*domain.Invoice
	statusUpdates int
	counts        []domain.StatusCount
	years         []domain.YearCount
	countCalls    int
	// afterGet runs once a read has returned, outside the lock.
	afterGet func(id int64)
	// afterGetByNumber runs once a lookup by number has returned, outside the lock.
	afterGetByNumber func(year, jobNo string)
}

func newFakeJobRepo(jobs ...*domain.Job) *fakeJobRepo {
	r := &fakeJobRepo{jobs: map[int64]*domain.Job{}, invoices: map[int64][]*domain.Invoice{}}
	for _, j := range jobs {
		r.nextID++
		if j.ID == 0 {
			j.ID = r.nextID
		}
		if j.Status == "" {
			j.Status = domain.JobStatusPending
		}
		r.jobs[j.ID] = j
	}
	return r
}

func clone(j *domain.Job) *domain.Job {
	c := *j
	c.Containers = append(domain.Containers(nil), j.Containers...)
	c.Documents = append(domain.Documents(nil), j.Documents...)
	return &c
}

func (r *fakeJobRepo) Create(_ context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.jobs {
		if j.Year == job.Year && j.JobNo == job.JobNo {
			return repository.ErrConflict
		}
	}
	r.nextID++
	job.ID = r.nextID
	job.CreatedAt = time.Now()
	r.jobs[job.ID] = clone(job)
	return nil
}

func (r *fakeJobRepo) Get(_ context.Context, id int64) (*domain.Job, error) {
	r.mu.Lock()
	j, ok := r.jobs[id]
	var out *domain.Job
	if ok {
		out = clone(j)
	}
	r.mu.Unlock()

	if !ok {
		return nil, repository.ErrNotFound
	}
	if r.afterGet != nil {
		r.afterGet(id)
	}
	return out, nil
}

func (r *fakeJobRepo) GetByNumber(_ context.Context, year, jobNo string) (*domain.Job, error) {
	out := r.lookup(year, jobNo)
	if r.afterGetByNumber != nil {
		r.afterGetByNumber(year, jobNo)
	}
	if out == nil {
		return nil, repository.ErrNotFound
	}
	return out, nil
}

func (r *fakeJobRepo) lookup(year, jobNo string) *domain.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.jobs {
		if j.Year == year && strings.EqualFold(j.JobNo, jobNo) {
			return clone(j)
		}
	}
	return nil
}

func (r *fakeJobRepo) Update(_ context.Context, job *domain.Job, expected domain.JobStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.jobs[job.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Status != expected {
		return fmt.Errorf("%w: job %d is no longer %s", repository.ErrConflict, job.ID, expected)
	}
	job.BillNo = stored.BillNo
	job.BillDate = stored.BillDate
	job.Documents = append(domain.Documents(nil), stored.Documents...)
	r.jobs[job.ID] = clone(job)
	return nil
}

func (r *fakeJobRepo) SaveDocument(_ context.Context, jobID int64, doc domain.Document) (domain.Documents, domain.Documents, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.jobs[jobID]
	if !ok {
		return nil, nil, repository.ErrNotFound
	}
	before := append(domain.Documents(nil), stored.Documents...)
	stored.Documents = before.With(doc)
	return before, append(domain.Documents(nil), stored.Documents...), nil
}

func (r *fakeJobRepo) Upsert(_ context.Context, job *domain.Job) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, j := range r.jobs {
		if j.Year != job.Year || !strings.EqualFold(j.JobNo, job.JobNo) {
			continue
		}
		if !j.IsOpen() {
			return false, repository.ErrConflict
		}
		job.ID = id
		r.jobs[id] = clone(job)
		return false, nil
	}
	r.nextID++
	job.ID = r.nextID
	job.CreatedAt = time.Now()
	r.jobs[job.ID] = clone(job)
	return true, nil
}

func (r *fakeJobRepo) sorted() []*domain.Job {
	out := make([]*domain.Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		out = append(out, clone(j))
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out
}

func (r *fakeJobRepo) List(_ context.Context, filter domain.JobFilter) ([]*domain.Job, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.Job
	for _, j := range r.sorted() {
		if filter.Year != "" && j.Year != filter.Year {
			continue
		}
		matched = append(matched, j)
	}
	start := filter.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.PageSize
	if filter.PageSize <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], len(matched), nil
}

func (r *fakeJobRepo) ListYears(context.Context) ([]string, error) {
	return []string{"24-25"}, nil
}

func (r *fakeJobRepo) CountByDetailedStatus(context.Context, *domain.DashboardFilter) ([]domain.StatusCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.countCalls++
	return r.counts, nil
}

func (r *fakeJobRepo) CountByYear(context.Context, *domain.DashboardFilter) ([]domain.YearCount, error) {
	return r.years, nil
}

func (r *fakeJobRepo) ListAfter(_ context.Context, afterID int64, limit int) ([]*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Job
	for _, j := range r.sorted() {
		if j.ID > afterID && len(out) < limit {
			out = append(out, j)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) UpdateStatusFields(_ context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.jobs[job.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.DetailedStatus = job.DetailedStatus
	stored.StatusRank = job.StatusRank
	stored.RowColor = job.RowColor
	r.statusUpdates++
	return nil
}

func (r *fakeJobRepo) Bill(_ context.Context, job *domain.Job, invoice *domain.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.jobs[job.ID]
	if !stored.IsBillable() {
		return fmt.Errorf("%w: not billable", repository.ErrConflict)
	}
	invoice.ID = int64(len(r.invoices[job.ID]) + 1)
	invoice.JobID = job.ID
	r.invoices[job.ID] = append(r.invoices[job.ID], invoice)
	stored.BillNo = invoice.BillNo
	stored.BillDate = invoice.BillDate
	stored.Status = domain.JobStatusCompleted
	job.BillNo = invoice.BillNo
	job.BillDate = invoice.BillDate
	job.Status = domain.JobStatusCompleted
	return nil
}

func (r *fakeJobRepo) ListInvoices(_ context.Context, jobID int64) ([]*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.invoices[jobID], nil
}

type fakeDirectoryRepo struct {
	mu      sync.Mutex
	entries map[int64]*domain.DirectoryEntry
	ensured []string
}

func newFakeDirectoryRepo() *fakeDirectoryRepo {
	return &fakeDirectoryRepo{entries: map[int64]*domain.DirectoryEntry{}}
}

func (r *fakeDirectoryRepo) Create(_ context.Context, e *domain.DirectoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = int64(len(r.entries) + 1)
	c := *e
	r.entries[e.ID] = &c
	return nil
}

func (r *fakeDirectoryRepo) EnsureName(_ context.Context, kind domain.DirectoryKind, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensured = append(r.ensured, string(kind)+":"+name)
	return int64(len(r.ensured)), nil
}

func (r *fakeDirectoryRepo) Get(_ context.Context, kind domain.DirectoryKind, id int64) (*domain.DirectoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.Kind != kind {
		return nil, repository.ErrNotFound
	}
	c := *e
	return &c, nil
}

func (r *fakeDirectoryRepo) Update(_ context.Context, e *domain.DirectoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *e
	r.entries[e.ID] = &c
	return nil
}

func (r *fakeDirectoryRepo) Delete(_ context.Context, _ domain.DirectoryKind, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
	return nil
}

func (r *fakeDirectoryRepo) List(context.Context, domain.DirectoryKind, domain.ListFilter) ([]*domain.DirectoryEntry, int, error) {
	return nil, 0, nil
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	if _, ok := r.users[u.Username]; ok {
		return repository.ErrConflict
	}
	u.ID = int64(len(r.users) + 1)
	c := *u
	r.users[u.Username] = &c
	return nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (r *fakeUserRepo) List(context.Context) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

type fakeCache struct {
	mu          sync.Mutex
	stored      map[string]*domain.Dashboard
	invalidated int
}

func newFakeCache() *fakeCache {
	return &fakeCache{stored: map[string]*domain.Dashboard{}}
}

func cacheKey(f *domain.DashboardFilter) string {
	if f == nil {
		return ""
	}
	return f.Year + "|" + f.Importer
}

func (c *fakeCache) Get(_ context.Context, f *domain.DashboardFilter) (*domain.Dashboard, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.stored[cacheKey(f)]
	return d, ok, nil
}

func (c *fakeCache) Set(_ context.Context, f *domain.DashboardFilter, d *domain.Dashboard) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stored[cacheKey(f)] = d
	return nil
}

func (c *fakeCache) InvalidateAll(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stored = map[string]*domain.Dashboard{}
	c.invalidated++
	return nil
}

type fakeStorage struct {
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (s *fakeStorage) ListObjects(context.Context, string) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (s *fakeStorage) PutObject(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[key] = b
	return nil
}

func (s *fakeStorage) DownloadObject(context.Context, string, string) error {
	return nil
}

func (s *fakeStorage) RemoveObject(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func (s *fakeStorage) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("https://files.local/%s?ttl=%d", key, int(ttl.Seconds())), nil
}
