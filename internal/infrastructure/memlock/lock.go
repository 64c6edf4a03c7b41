// Package memlock implementa un candado por clave en memoria para serializar
// las operaciones sobre una misma factura dentro de un proceso. Semántica de
// candado atómico con TTL: quien adquiere recibe una función de liberación
// ligada a su token de propiedad, y un titular que muere sin liberar expira
// pasado el TTL en vez de bloquear la clave para siempre.
package memlock

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/tu-usuario/invoicing-pro/internal/domain"
)

const pollInterval = 25 * time.Millisecond

// Locker reparte candados exclusivos por clave.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*lockState

	wait time.Duration // espera máxima por el candado
	ttl  time.Duration // vida máxima de un candado no liberado
}

type lockState struct {
	owner     int64
	expiresAt time.Time
}

// New construye el locker. wait acota cuánto espera Acquire por un candado
// ocupado; ttl acota cuánto sobrevive un candado cuyo titular nunca liberó.
func New(wait, ttl time.Duration) *Locker {
	return &Locker{
		locks: make(map[string]*lockState),
		wait:  wait,
		ttl:   ttl,
	}
}

// Acquire toma el candado de la clave o espera hasta el límite configurado.
// Si el candado no se consigue a tiempo devuelve domain.ErrLockTimeout: error
// de contención, el caller puede reintentar la operación completa.
func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	deadline := time.Now().Add(l.wait)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if release, ok := l.tryAcquire(key); ok {
			return release, nil
		}
		if !time.Now().Before(deadline) {
			return nil, domain.ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *Locker) tryAcquire(key string) (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if st, ok := l.locks[key]; ok && now.Before(st.expiresAt) {
		return nil, false
	}

	// Token de propiedad: una liberación tardía de un titular expirado no
	// debe soltar el candado del titular nuevo.
	token := rand.Int63()
	l.locks[key] = &lockState{owner: token, expiresAt: now.Add(l.ttl)}

	return func() { l.release(key, token) }, true
}

func (l *Locker) release(key string, token int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if st, ok := l.locks[key]; ok && st.owner == token {
		delete(l.locks, key)
	}
}
