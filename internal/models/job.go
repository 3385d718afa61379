package models

import "time"

// JobStatus — статус задачи обработки файла.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Terminal сообщает, что после этого статуса изменений не ожидается.
// Неизвестные статусы считаются нетерминальными.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// Job — задача обработки, принадлежащая backend.
type Job struct {
	ID            string     `json:"id"`
	Filename      string     `json:"filename,omitempty"`
	Status        JobStatus  `json:"status"`
	Progress      float64    `json:"progress"`
	TotalRows     int64      `json:"total_rows"`
	ProcessedRows int64      `json:"processed_rows"`
	FailedRows    int64      `json:"failed_rows"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// AllTerminal сообщает, что наблюдать больше нечего: все задачи
// в терминальном статусе. Пустой набор тоже считается завершённым.
func AllTerminal(jobs []Job) bool {
	for _, j := range jobs {
		if !j.Status.Terminal() {
			return false
		}
	}
	return true
}
