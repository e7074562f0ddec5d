package costing_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/costeo-api/internal/application/costing"
)

func TestKeyedLocker_SerializaMismaClave(t *testing.T) {
	l := costing.NewKeyedLocker()
	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "clave")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside, "nunca debe haber dos dueños simultáneos de la clave")
}

func TestKeyedLocker_ClavesDistintasNoSeBloquean(t *testing.T) {
	l := costing.NewKeyedLocker()
	unlockA, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := l.Lock(ctx, "b")
	require.NoError(t, err)
	unlockB()
}

func TestKeyedLocker_RespetaCancelacion(t *testing.T) {
	l := costing.NewKeyedLocker()
	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "k")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock() // liberar dos veces no debe bloquear ni entrar en pánico
	again, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	again()
}

func TestLockKeys(t *testing.T) {
	assert.Equal(t, "costeo:recalc:MESA:EST_STD:USD", costing.RecomputeKey("MESA", "EST_STD", "USD"))
	assert.Equal(t, "costeo:avg:TORNILLO:BOD-1", costing.ReceiptKey("TORNILLO", "BOD-1"))
}
