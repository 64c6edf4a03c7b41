package memlock_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/invoicing-pro/internal/domain"
	"github.com/tu-usuario/invoicing-pro/internal/infrastructure/memlock"
)

func TestAcquire_ExclusionPorClave(t *testing.T) {
	l := memlock.New(time.Second, 10*time.Second)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "invoice:1")
	require.NoError(t, err)

	// Otra clave no compite por el mismo candado.
	releaseOther, err := l.Acquire(ctx, "invoice:2")
	require.NoError(t, err)
	releaseOther()

	release()

	// Liberado, la misma clave vuelve a estar disponible de inmediato.
	release2, err := l.Acquire(ctx, "invoice:1")
	require.NoError(t, err)
	release2()
}

func TestAcquire_TimeoutDevuelveErrorDeContencion(t *testing.T) {
	l := memlock.New(80*time.Millisecond, 10*time.Second)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "invoice:1")
	require.NoError(t, err)
	defer release()

	_, err = l.Acquire(ctx, "invoice:1")
	assert.ErrorIs(t, err, domain.ErrLockTimeout)
}

func TestAcquire_ContextoCanceladoCortaLaEspera(t *testing.T) {
	l := memlock.New(10*time.Second, 10*time.Second)

	release, err := l.Acquire(context.Background(), "invoice:1")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	_, err = l.Acquire(ctx, "invoice:1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAcquire_TTLExpiraCandadosHuerfanos(t *testing.T) {
	l := memlock.New(time.Second, 150*time.Millisecond)
	ctx := context.Background()

	// Titular que jamás libera: simula un proceso muerto a mitad de la
	// operación.
	releaseHuerfano, err := l.Acquire(ctx, "invoice:1")
	require.NoError(t, err)

	release, err := l.Acquire(ctx, "invoice:1")
	require.NoError(t, err, "el TTL debe expirar el candado huérfano")
	defer release()

	// La liberación tardía del titular expirado no suelta el candado nuevo.
	releaseHuerfano()
	_, err = l.Acquire(mustShortCtx(t), "invoice:1")
	assert.Error(t, err)
}

func mustShortCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	t.Cleanup(cancel)
	return ctx
}

func TestAcquire_SerializaSeccionesCriticas(t *testing.T) {
	l := memlock.New(5*time.Second, 10*time.Second)
	ctx := context.Background()

	var mu sync.Mutex
	var dentro, maxDentro int

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(ctx, "invoice:1")
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			dentro++
			if dentro > maxDentro {
				maxDentro = dentro
			}
			mu.Unlock()

			time.Sleep(2 * time.Millisecond)

			mu.Lock()
			dentro--
			mu.Unlock()
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxDentro, "jamás dos titulares dentro de la sección crítica")
}
