// Package clustertest provee fakes in-memory de cluster.Conn / cluster.Database
// para tests de orquestadores sin MongoDB real.
package clustertest

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/dropDatabas3/tenantplane/internal/cluster"
	"github.com/dropDatabas3/tenantplane/internal/domain"
)

// FakeCluster implementa cluster.Conn sobre mapas en memoria.
type FakeCluster struct {
	mu        sync.Mutex
	databases map[string]*FakeDatabase
	dropped   []string

	// PingErr fuerza el error de Ping.
	PingErr error

	Closed bool
}

// NewFakeCluster crea un cluster fake vacío.
func NewFakeCluster() *FakeCluster {
	return &FakeCluster{databases: make(map[string]*FakeDatabase)}
}

func (c *FakeCluster) Ping(ctx context.Context) error { return c.PingErr }

func (c *FakeCluster) Close(ctx context.Context) error {
	c.Closed = true
	return nil
}

// Database retorna el handle (lo crea si no existía, igual que MongoDB:
// la base no "existe" hasta que tiene colecciones).
func (c *FakeCluster) Database(name string) cluster.Database {
	c.mu.Lock()
	defer c.mu.Unlock()
	if db, ok := c.databases[name]; ok {
		return db
	}
	db := &FakeDatabase{name: name, collections: make(map[string][]any), owner: c}
	c.databases[name] = db
	return db
}

// DB es Database con el tipo concreto, para asserts en tests.
func (c *FakeCluster) DB(name string) *FakeDatabase {
	return c.Database(name).(*FakeDatabase)
}

// HasDatabase verifica si una base existe (tiene al menos una colección).
func (c *FakeCluster) HasDatabase(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	db, ok := c.databases[name]
	return ok && !db.Dropped && len(db.collections) > 0
}

// DroppedDatabases retorna los nombres de bases dropeadas, en orden.
func (c *FakeCluster) DroppedDatabases() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.dropped...)
}

// FakeDatabase implementa cluster.Database.
type FakeDatabase struct {
	mu          sync.Mutex
	name        string
	collections map[string][]any

	// CreateCollectionErr fuerza un error en CreateCollection (toda colección).
	CreateCollectionErr error

	// InsertErr fuerza un error en InsertOne/UpsertOne.
	InsertErr error

	// FindErr fuerza un error en FindOne.
	FindErr error

	Dropped bool

	owner *FakeCluster
}

func (d *FakeDatabase) Name() string { return d.name }

func (d *FakeDatabase) CreateCollection(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.CreateCollectionErr != nil {
		return d.CreateCollectionErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.collections[name]; ok {
		return fmt.Errorf("%s: %w", name, cluster.ErrCollectionExists)
	}
	d.collections[name] = []any{}
	d.Dropped = false
	return nil
}

func (d *FakeDatabase) ListCollectionNames(ctx context.Context) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	names := make([]string, 0, len(d.collections))
	for n := range d.collections {
		names = append(names, n)
	}
	return names, nil
}

func (d *FakeDatabase) InsertOne(ctx context.Context, collection string, doc any) error {
	if d.InsertErr != nil {
		return d.InsertErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.collections[collection] = append(d.collections[collection], doc)
	return nil
}

func (d *FakeDatabase) UpsertOne(ctx context.Context, collection string, filter map[string]any, doc any) error {
	if d.InsertErr != nil {
		return d.InsertErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	docs := d.collections[collection]
	for i, existing := range docs {
		if matchDoc(existing, filter) {
			docs[i] = doc
			return nil
		}
	}
	d.collections[collection] = append(docs, doc)
	return nil
}

func (d *FakeDatabase) FindOne(ctx context.Context, collection string, filter map[string]any, out any) error {
	if d.FindErr != nil {
		return d.FindErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, doc := range d.collections[collection] {
		if matchDoc(doc, filter) {
			return assign(out, doc)
		}
	}
	return domain.ErrNotFound
}

func (d *FakeDatabase) FindAll(ctx context.Context, collection string, filter map[string]any, out any) error {
	if d.FindErr != nil {
		return d.FindErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	ov := reflect.ValueOf(out)
	if ov.Kind() != reflect.Pointer || ov.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("clustertest: out must be a pointer to slice")
	}
	slice := reflect.MakeSlice(ov.Elem().Type(), 0, 0)
	elemType := ov.Elem().Type().Elem()
	for _, doc := range d.collections[collection] {
		if !matchDoc(doc, filter) {
			continue
		}
		dv := reflect.ValueOf(doc)
		for dv.Kind() == reflect.Pointer {
			dv = dv.Elem()
		}
		if !dv.Type().AssignableTo(elemType) {
			return fmt.Errorf("clustertest: cannot decode %s into %s", dv.Type(), elemType)
		}
		slice = reflect.Append(slice, dv)
	}
	ov.Elem().Set(slice)
	return nil
}

func (d *FakeDatabase) UpdateOne(ctx context.Context, collection string, filter map[string]any, set map[string]any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, doc := range d.collections[collection] {
		if matchDoc(doc, filter) {
			updated, err := applySet(doc, set)
			if err != nil {
				return err
			}
			d.collections[collection][i] = updated
			return nil
		}
	}
	return domain.ErrNotFound
}

func (d *FakeDatabase) DeleteOne(ctx context.Context, collection string, filter map[string]any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	docs := d.collections[collection]
	for i, doc := range docs {
		if matchDoc(doc, filter) {
			d.collections[collection] = append(docs[:i:i], docs[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (d *FakeDatabase) Drop(ctx context.Context) error {
	d.mu.Lock()
	d.collections = make(map[string][]any)
	d.Dropped = true
	d.mu.Unlock()
	if d.owner != nil {
		d.owner.mu.Lock()
		d.owner.dropped = append(d.owner.dropped, d.name)
		d.owner.mu.Unlock()
	}
	return nil
}

// Docs retorna copia de los documentos de una colección.
func (d *FakeDatabase) Docs(collection string) []any {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]any(nil), d.collections[collection]...)
}

// HasCollection verifica si la colección fue creada.
func (d *FakeDatabase) HasCollection(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.collections[name]
	return ok
}

// ─── Matching por tags bson ───

// matchDoc compara cada key del filtro contra el campo del struct cuyo tag
// bson coincide. Suficiente para los filtros de igualdad que usa el core.
func matchDoc(doc any, filter map[string]any) bool {
	v := reflect.ValueOf(doc)
	for v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return false
	}
	for key, want := range filter {
		fv, ok := fieldByBSONTag(v, key)
		if !ok {
			return false
		}
		if !reflect.DeepEqual(fv.Interface(), want) {
			return false
		}
	}
	return true
}

func fieldByBSONTag(v reflect.Value, tag string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := strings.Split(t.Field(i).Tag.Get("bson"), ",")[0]
		if name == tag {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func applySet(doc any, set map[string]any) (any, error) {
	v := reflect.ValueOf(doc)
	for v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	cp := reflect.New(v.Type())
	cp.Elem().Set(v)
	for key, val := range set {
		fv, ok := fieldByBSONTag(cp.Elem(), key)
		if !ok {
			return nil, fmt.Errorf("clustertest: no field with bson tag %q", key)
		}
		rv := reflect.ValueOf(val)
		if !rv.Type().AssignableTo(fv.Type()) {
			if rv.Type().ConvertibleTo(fv.Type()) {
				rv = rv.Convert(fv.Type())
			} else {
				return nil, fmt.Errorf("clustertest: cannot set %q", key)
			}
		}
		fv.Set(rv)
	}
	return cp.Elem().Interface(), nil
}

func assign(out, doc any) error {
	ov := reflect.ValueOf(out)
	if ov.Kind() != reflect.Pointer || ov.IsNil() {
		return fmt.Errorf("clustertest: out must be a non-nil pointer")
	}
	dv := reflect.ValueOf(doc)
	for dv.Kind() == reflect.Pointer {
		dv = dv.Elem()
	}
	if !dv.Type().AssignableTo(ov.Elem().Type()) {
		return fmt.Errorf("clustertest: cannot decode %s into %s", dv.Type(), ov.Elem().Type())
	}
	ov.Elem().Set(dv)
	return nil
}
