// Package rworker runs small jobs on their own goroutines while bounding
// how many run at once through a shared rate channel.
package rworker

import "sync"

// Job schedules fn on a new goroutine. The rate channel caps concurrency:
// the goroutine blocks until it can place a token. The first error is kept
// on errCh, later ones are dropped.
func Job(wg *sync.WaitGroup, fn func() error, rate chan struct{}, errCh chan<- error) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		rate <- struct{}{}
		defer func() { <-rate }()
		if err := fn(); err != nil {
			select {
			case errCh <- err:
			default:
			}
		}
	}()
}
