package cluster

import (
	"context"
	"errors"
)

// Conn representa una conexión activa a un cluster.
// La implementación real envuelve al driver de MongoDB; los tests usan fakes.
type Conn interface {
	// Ping verifica la conexión.
	Ping(ctx context.Context) error

	// Database retorna un handle a una base por nombre. No hace I/O:
	// en MongoDB las bases se materializan al crear la primera colección.
	Database(name string) Database

	// Close cierra la conexión.
	Close(ctx context.Context) error
}

// Database agrupa las operaciones que los orquestadores necesitan sobre una
// base por-tenant. Deliberadamente chica: lo que no se usa no se abstrae.
type Database interface {
	// Name retorna el nombre de la base.
	Name() string

	// CreateCollection crea una colección. Retorna ErrCollectionExists si ya
	// existe (los callers lo tratan como éxito para re-runs idempotentes).
	CreateCollection(ctx context.Context, name string) error

	// ListCollectionNames retorna las colecciones existentes. Una base sin
	// colecciones equivale a una base inexistente.
	ListCollectionNames(ctx context.Context) ([]string, error)

	// InsertOne inserta un documento en una colección.
	InsertOne(ctx context.Context, collection string, doc any) error

	// UpsertOne reemplaza el documento que matchea el filtro, o lo inserta
	// si no existe.
	UpsertOne(ctx context.Context, collection string, filter map[string]any, doc any) error

	// FindOne busca un documento y lo decodifica en out.
	// Retorna domain.ErrNotFound (via errors.Is) si no hay match.
	FindOne(ctx context.Context, collection string, filter map[string]any, out any) error

	// FindAll decodifica todos los documentos que matchean el filtro en out
	// (puntero a slice). Sin matches deja el slice vacío, no es error.
	FindAll(ctx context.Context, collection string, filter map[string]any, out any) error

	// UpdateOne aplica un $set al documento que matchea el filtro.
	// Retorna domain.ErrNotFound si no hay match.
	UpdateOne(ctx context.Context, collection string, filter map[string]any, set map[string]any) error

	// DeleteOne elimina el documento que matchea el filtro.
	// Retorna domain.ErrNotFound si no hay match.
	DeleteOne(ctx context.Context, collection string, filter map[string]any) error

	// Drop elimina la base completa.
	Drop(ctx context.Context) error
}

// ErrCollectionExists indica que la colección ya existía.
// En provisioning se trata como éxito, no como fallo.
var ErrCollectionExists = errors.New("collection already exists")
