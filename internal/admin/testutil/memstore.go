package testutil

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"mongo-admin/internal/admin/domain/model"
	"mongo-admin/internal/admin/domain/namespace"
	"mongo-admin/internal/admin/domain/repository"
	"mongo-admin/internal/shared/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemStore is an in-memory document store implementing every persistence
// port. Filters support top-level equality, $text (substring over string
// fields) and nothing else; that is enough to drive the services in tests.
type MemStore struct {
	mu          sync.Mutex
	collections map[string][]bson.D
	order       []string
	meta        map[string]*model.TenantCollectionsMeta
	audit       map[string][]model.AuditEntry
	auditSeq    int

	// Fail makes the named operation return the error, e.g. Fail["count"].
	Fail map[string]error
	// StatsErr makes StorageSize fail for the listed physical names.
	StatsErr map[string]error
	// Calls records every operation name in call order.
	Calls []string
}

var (
	_ repository.DocumentRepository = (*MemStore)(nil)
	_ repository.CatalogRepository  = (*MemStore)(nil)
	_ repository.MetadataRepository = (*MemStore)(nil)
	_ repository.AuditStore         = (*MemStore)(nil)
)

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		collections: map[string][]bson.D{},
		meta:        map[string]*model.TenantCollectionsMeta{},
		audit:       map[string][]model.AuditEntry{},
		Fail:        map[string]error{},
		StatsErr:    map[string]error{},
	}
}

// Seed creates raw (which may belong to any tenant) with docs.
func (s *MemStore) Seed(raw string, docs ...bson.D) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[raw]; !ok {
		s.order = append(s.order, raw)
	}
	for _, d := range docs {
		s.collections[raw] = append(s.collections[raw], withID(d))
	}
	if s.collections[raw] == nil {
		s.collections[raw] = []bson.D{}
	}
}

// Docs returns a copy of the raw collection's documents.
func (s *MemStore) Docs(raw string) []bson.D {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bson.D(nil), s.collections[raw]...)
}

// Has reports whether raw exists.
func (s *MemStore) Has(raw string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.collections[raw]
	return ok
}

// Called reports whether op was invoked.
func (s *MemStore) Called(op string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.Calls {
		if c == op {
			return true
		}
	}
	return false
}

func (s *MemStore) enter(op string) error {
	s.Calls = append(s.Calls, op)
	if err, ok := s.Fail[op]; ok {
		return err
	}
	return nil
}

func withID(d bson.D) bson.D {
	for _, e := range d {
		if e.Key == "_id" {
			return append(bson.D(nil), d...)
		}
	}
	return append(bson.D{{Key: "_id", Value: primitive.NewObjectID()}}, d...)
}

func idOf(d bson.D) interface{} {
	for _, e := range d {
		if e.Key == "_id" {
			return e.Value
		}
	}
	return nil
}

func lookup(d bson.D, key string) (interface{}, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

func matches(d, filter bson.D) bool {
	for _, f := range filter {
		if f.Key == "$text" {
			term := ""
			if spec, ok := f.Value.(bson.D); ok {
				if v, ok := lookup(spec, "$search"); ok {
					term, _ = v.(string)
				}
			}
			if !textMatch(d, term) {
				return false
			}
			continue
		}
		v, ok := lookup(d, f.Key)
		if !ok || !reflect.DeepEqual(v, f.Value) {
			return false
		}
	}
	return true
}

func textMatch(d bson.D, term string) bool {
	for _, e := range d {
		if s, ok := e.Value.(string); ok && strings.Contains(strings.ToLower(s), strings.ToLower(term)) {
			return true
		}
	}
	return false
}

func toM(d bson.D) bson.M {
	m := bson.M{}
	for _, e := range d {
		m[e.Key] = e.Value
	}
	return m
}

func compare(a, b interface{}) int {
	switch av := a.(type) {
	case primitive.ObjectID:
		if bv, ok := b.(primitive.ObjectID); ok {
			return strings.Compare(av.Hex(), bv.Hex())
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	}
	af, aok := number(a)
	bf, bok := number(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func sortDocs(docs []bson.D, spec bson.D) {
	if len(spec) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, k := range spec {
			a, _ := lookup(docs[i], k.Key)
			b, _ := lookup(docs[j], k.Key)
			c := compare(a, b)
			if c == 0 {
				continue
			}
			if dir, _ := number(k.Value); dir < 0 {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func (s *MemStore) selectDocs(raw string, filter bson.D) []bson.D {
	var out []bson.D
	for _, d := range s.collections[raw] {
		if matches(d, filter) {
			out = append(out, d)
		}
	}
	return out
}

// Find implements repository.DocumentRepository.
func (s *MemStore) Find(_ context.Context, name namespace.PhysicalName, filter bson.D, opts repository.FindOptions) ([]bson.M, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("find"); err != nil {
		return nil, err
	}
	docs := s.selectDocs(name.String(), filter)
	sortDocs(docs, opts.Sort)
	if opts.Skip >= int64(len(docs)) {
		return []bson.M{}, nil
	}
	docs = docs[opts.Skip:]
	if opts.Limit > 0 && int64(len(docs)) > opts.Limit {
		docs = docs[:opts.Limit]
	}
	out := make([]bson.M, 0, len(docs))
	for _, d := range docs {
		out = append(out, toM(d))
	}
	return out, nil
}

// Count implements repository.DocumentRepository.
func (s *MemStore) Count(_ context.Context, name namespace.PhysicalName, filter bson.D) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("count"); err != nil {
		return 0, err
	}
	return int64(len(s.selectDocs(name.String(), filter))), nil
}

// Sample implements repository.DocumentRepository.
func (s *MemStore) Sample(_ context.Context, name namespace.PhysicalName, limit int64) ([]bson.D, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("sample"); err != nil {
		return nil, err
	}
	docs := s.collections[name.String()]
	if int64(len(docs)) > limit {
		docs = docs[:limit]
	}
	return append([]bson.D(nil), docs...), nil
}

// FindOne implements repository.DocumentRepository.
func (s *MemStore) FindOne(_ context.Context, name namespace.PhysicalName, filter bson.D) (bson.M, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("find_one"); err != nil {
		return nil, err
	}
	docs := s.selectDocs(name.String(), filter)
	if len(docs) == 0 {
		return nil, errors.NewNotFoundError("document")
	}
	return toM(docs[0]), nil
}

// InsertOne implements repository.DocumentRepository.
func (s *MemStore) InsertOne(_ context.Context, name namespace.PhysicalName, doc bson.D) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("insert_one"); err != nil {
		return nil, err
	}
	return s.insert(name.String(), doc)
}

func (s *MemStore) insert(raw string, doc bson.D) (interface{}, error) {
	d := withID(doc)
	id := idOf(d)
	for _, existing := range s.collections[raw] {
		if reflect.DeepEqual(idOf(existing), id) {
			return nil, errors.NewConflictError("duplicate document id")
		}
	}
	if _, ok := s.collections[raw]; !ok {
		s.order = append(s.order, raw)
	}
	s.collections[raw] = append(s.collections[raw], d)
	return id, nil
}

// InsertMany implements repository.DocumentRepository.
func (s *MemStore) InsertMany(_ context.Context, name namespace.PhysicalName, docs []bson.D) ([]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("insert_many"); err != nil {
		return nil, err
	}
	ids := make([]interface{}, 0, len(docs))
	for _, d := range docs {
		id, err := s.insert(name.String(), d)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func applySet(d bson.D, update bson.D) bson.D {
	set, _ := lookup(update, "$set")
	patch, _ := set.(bson.D)
	out := append(bson.D(nil), d...)
	for _, p := range patch {
		replaced := false
		for i := range out {
			if out[i].Key == p.Key {
				out[i].Value = p.Value
				replaced = true
			}
		}
		if !replaced {
			out = append(out, p)
		}
	}
	return out
}

func (s *MemStore) update(raw string, filter, update bson.D, many bool) (matched, modified int64) {
	docs := s.collections[raw]
	for i, d := range docs {
		if !matches(d, filter) {
			continue
		}
		matched++
		next := applySet(d, update)
		if !reflect.DeepEqual(next, d) {
			modified++
		}
		docs[i] = next
		if !many {
			break
		}
	}
	return matched, modified
}

// UpdateOne implements repository.DocumentRepository.
func (s *MemStore) UpdateOne(_ context.Context, name namespace.PhysicalName, filter, update bson.D) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("update_one"); err != nil {
		return 0, err
	}
	matched, _ := s.update(name.String(), filter, update, false)
	return matched, nil
}

// UpdateMany implements repository.DocumentRepository.
func (s *MemStore) UpdateMany(_ context.Context, name namespace.PhysicalName, filter, update bson.D) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("update_many"); err != nil {
		return 0, err
	}
	_, modified := s.update(name.String(), filter, update, true)
	return modified, nil
}

func (s *MemStore) remove(raw string, filter bson.D, many bool) int64 {
	var kept []bson.D
	var deleted int64
	for _, d := range s.collections[raw] {
		if matches(d, filter) && (many || deleted == 0) {
			deleted++
			continue
		}
		kept = append(kept, d)
	}
	if _, ok := s.collections[raw]; ok {
		if kept == nil {
			kept = []bson.D{}
		}
		s.collections[raw] = kept
	}
	return deleted
}

// DeleteOne implements repository.DocumentRepository.
func (s *MemStore) DeleteOne(_ context.Context, name namespace.PhysicalName, filter bson.D) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("delete_one"); err != nil {
		return 0, err
	}
	return s.remove(name.String(), filter, false), nil
}

// DeleteMany implements repository.DocumentRepository.
func (s *MemStore) DeleteMany(_ context.Context, name namespace.PhysicalName, filter bson.D) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("delete_many"); err != nil {
		return 0, err
	}
	return s.remove(name.String(), filter, true), nil
}

// Aggregate supports only a leading $match and a trailing $limit.
func (s *MemStore) Aggregate(_ context.Context, name namespace.PhysicalName, pipeline bson.A) ([]bson.M, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("aggregate"); err != nil {
		return nil, err
	}
	docs := append([]bson.D(nil), s.collections[name.String()]...)
	for _, st := range pipeline {
		stage, _ := st.(bson.D)
		if len(stage) == 0 {
			continue
		}
		switch stage[0].Key {
		case "$match":
			f, _ := stage[0].Value.(bson.D)
			var kept []bson.D
			for _, d := range docs {
				if matches(d, f) {
					kept = append(kept, d)
				}
			}
			docs = kept
		case "$limit":
			if n, ok := number(stage[0].Value); ok && int(n) < len(docs) {
				docs = docs[:int(n)]
			}
		}
	}
	out := make([]bson.M, 0, len(docs))
	for _, d := range docs {
		out = append(out, toM(d))
	}
	return out, nil
}

// Each implements repository.DocumentRepository.
func (s *MemStore) Each(_ context.Context, name namespace.PhysicalName, filter bson.D, sortSpec bson.D, fn func(bson.D) error) error {
	s.mu.Lock()
	if err := s.enter("each"); err != nil {
		s.mu.Unlock()
		return err
	}
	docs := s.selectDocs(name.String(), filter)
	sortDocs(docs, sortSpec)
	s.mu.Unlock()
	for _, d := range docs {
		if err := fn(d); err != nil {
			return err
		}
	}
	return nil
}

// ListNames implements repository.CatalogRepository.
func (s *MemStore) ListNames(_ context.Context, tenantID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("list_names"); err != nil {
		return nil, err
	}
	var out []string
	for _, raw := range s.order {
		if strings.HasPrefix(raw, namespace.Prefix(tenantID)) {
			out = append(out, raw)
		}
	}
	return out, nil
}

// Exists implements repository.CatalogRepository.
func (s *MemStore) Exists(_ context.Context, name namespace.PhysicalName) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("exists"); err != nil {
		return false, err
	}
	_, ok := s.collections[name.String()]
	return ok, nil
}

// Create implements repository.CatalogRepository.
func (s *MemStore) Create(_ context.Context, name namespace.PhysicalName) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("create"); err != nil {
		return err
	}
	if _, ok := s.collections[name.String()]; ok {
		return errors.NewConflictError("collection already exists")
	}
	s.collections[name.String()] = []bson.D{}
	s.order = append(s.order, name.String())
	return nil
}

// Drop implements repository.CatalogRepository.
func (s *MemStore) Drop(_ context.Context, name namespace.PhysicalName) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("drop"); err != nil {
		return err
	}
	raw := name.String()
	delete(s.collections, raw)
	for i, n := range s.order {
		if n == raw {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// StorageSize reports 64 bytes per document unless StatsErr is set.
func (s *MemStore) StorageSize(_ context.Context, name namespace.PhysicalName) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("storage_size"); err != nil {
		return 0, err
	}
	if err, ok := s.StatsErr[name.String()]; ok {
		return 0, err
	}
	return int64(len(s.collections[name.String()])) * 64, nil
}

// AddCollection implements repository.MetadataRepository.
func (s *MemStore) AddCollection(_ context.Context, tenantID, logical string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("meta_add"); err != nil {
		return err
	}
	now := time.Now().UTC()
	m, ok := s.meta[tenantID]
	if !ok {
		m = &model.TenantCollectionsMeta{OrgID: tenantID, Collections: []string{}, CreatedAt: now}
		s.meta[tenantID] = m
	}
	for _, c := range m.Collections {
		if c == logical {
			m.UpdatedAt = now
			return nil
		}
	}
	m.Collections = append(m.Collections, logical)
	m.UpdatedAt = now
	return nil
}

// RemoveCollection implements repository.MetadataRepository.
func (s *MemStore) RemoveCollection(_ context.Context, tenantID, logical string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("meta_remove"); err != nil {
		return err
	}
	m, ok := s.meta[tenantID]
	if !ok {
		return nil
	}
	kept := []string{}
	for _, c := range m.Collections {
		if c != logical {
			kept = append(kept, c)
		}
	}
	m.Collections = kept
	m.UpdatedAt = time.Now().UTC()
	return nil
}

// Get implements repository.MetadataRepository.
func (s *MemStore) Get(_ context.Context, tenantID string) (*model.TenantCollectionsMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("meta_get"); err != nil {
		return nil, err
	}
	m, ok := s.meta[tenantID]
	if !ok {
		return &model.TenantCollectionsMeta{OrgID: tenantID, Collections: []string{}}, nil
	}
	cp := *m
	cp.Collections = append([]string(nil), m.Collections...)
	return &cp, nil
}

// Append implements repository.AuditStore.
func (s *MemStore) Append(_ context.Context, event model.ChangeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("audit_append"); err != nil {
		return err
	}
	s.auditSeq++
	entry := model.AuditEntry{StreamID: fmt.Sprintf("%d-0", s.auditSeq), ChangeEvent: event}
	s.audit[event.TenantID] = append(s.audit[event.TenantID], entry)
	return nil
}

// Recent implements repository.AuditStore, newest first.
func (s *MemStore) Recent(_ context.Context, tenantID string, limit int64) ([]model.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("audit_recent"); err != nil {
		return nil, err
	}
	entries := s.audit[tenantID]
	out := make([]model.AuditEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}
