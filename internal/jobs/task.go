package jobs

import (
	"context"
	"sync/atomic"
)

// Task — дескриптор запущенного цикла опроса.
type Task struct {
	cancel   context.CancelFunc
	done     chan struct{}
	finished atomic.Bool
}

// Stop отменяет цикл и ждёт его завершения. Повторный вызов безопасен.
func (t *Task) Stop() {
	t.cancel()
	<-t.done
}

// Done закрывается, когда цикл завершён по любой причине.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Finished сообщает, что цикл завершился сам, потому что все задачи терминальны.
func (t *Task) Finished() bool {
	return t.finished.Load()
}
