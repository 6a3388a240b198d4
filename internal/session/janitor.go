package session

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Janitor periodically expires idle sessions
type Janitor struct {
	manager  *Manager
	logger   *logrus.Logger
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewJanitor(manager *Manager, interval time.Duration, logger *logrus.Logger) *Janitor {
	return &Janitor{
		manager:  manager,
		logger:   logger,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (j *Janitor) Start() {
	j.wg.Add(1)
	go j.run()
}

func (j *Janitor) run() {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stopChan:
			return
		case t := <-ticker.C:
			if n := j.manager.Sweep(t); n > 0 {
				j.logger.WithFields(logrus.Fields{
					"expired":   n,
					"remaining": j.manager.Len(),
				}).Info("Expired idle sessions")
			}
		}
	}
}

// Stop waits for the sweep loop to exit
func (j *Janitor) Stop() {
	j.stopOnce.Do(func() { close(j.stopChan) })
	j.wg.Wait()
}
