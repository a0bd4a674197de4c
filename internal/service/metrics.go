package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Доменные метрики.
var (
	entriesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fieldscribe_entries_created_total",
		Help: "Количество созданных записей.",
	})
	entriesDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fieldscribe_entries_deleted_total",
		Help: "Количество удалённых записей, включая каскадное удаление с пользователем.",
	})
	sharesPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fieldscribe_share_links_published_total",
		Help: "Количество выпущенных публичных ссылок.",
	})
	blobCleanupFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fieldscribe_blob_cleanup_failures_total",
		Help: "Блобы, которые не удалось удалить после коммита или отката.",
	})
	loginFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldscribe_login_failures_total",
		Help: "Неудачные попытки входа.",
	}, []string{"reason"})
	analysisRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldscribe_analysis_runs_total",
		Help: "Запуски тематического анализа.",
	}, []string{"result"})
)
