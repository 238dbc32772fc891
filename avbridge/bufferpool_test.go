package avbridge

import "testing"

func TestBufferPoolGetPut(t *testing.T) {
	pool := NewBufferPool(1024)

	buf := pool.Get(512)
	if len(buf) != 512 {
		t.Errorf("Get returned buffer with len=%d, want 512", len(buf))
	}
	if cap(buf) < 512 {
		t.Errorf("Get returned buffer with cap=%d, want >= 512", cap(buf))
	}
	pool.Put(buf)
}

func TestBufferPoolResize(t *testing.T) {
	pool := NewBufferPool(100)

	buf1 := pool.Get(50)
	pool.Put(buf1)

	buf2 := pool.Get(200)
	if cap(buf2) < 200 {
		t.Errorf("Get(200) returned cap=%d, want >= 200", cap(buf2))
	}
	pool.Put(buf2)
}

func TestBufferPoolConcurrent(t *testing.T) {
	pool := NewBufferPool(1024)
	done := make(chan bool)

	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				buf := pool.Get(512)
				buf[0] = byte(j)
				pool.Put(buf)
			}
			done <- true
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}
