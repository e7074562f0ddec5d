package costing

import (
	"context"
	"sync"
)

// Locker serializa escritores sobre una misma clave (ej. producto + prefijo + moneda).
// El patrón expirar-insertar no es seguro con escritores concurrentes sobre la misma clave.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// RecomputeKey clave de bloqueo de un recálculo de costos de producto.
func RecomputeKey(productID, prefix, currencyUomID string) string {
	return "costeo:recalc:" + productID + ":" + prefix + ":" + currencyUomID
}

// ReceiptKey clave de bloqueo de un recálculo de costo promedio.
func ReceiptKey(productID, facilityID string) string {
	return "costeo:avg:" + productID + ":" + facilityID
}

// KeyedLocker implementación en proceso: un semáforo por clave, liberado cuando nadie lo usa.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	ch   chan struct{}
	refs int
}

// NewKeyedLocker construye el locker en memoria.
func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[string]*keyedEntry)}
}

// Lock bloquea key hasta obtenerla o hasta que ctx se cancele.
func (l *KeyedLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &keyedEntry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.release(key, e)
		})
	}, nil
}

func (l *KeyedLocker) release(key string, e *keyedEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}
