package dashboard

import (
	"context"
	"net/http"

	"github.com/corray333/backend-labs/adminlocal/internal/service/models/order"
	"github.com/corray333/backend-labs/adminlocal/internal/transport/http/respond"
)

type service interface {
	DashboardStats(ctx context.Context) (order.Stats, error)
}

// Stats handles GET /api/dashboard/stats.
func Stats(w http.ResponseWriter, r *http.Request, service service) {
	stats, err := service.DashboardStats(r.Context())
	if err != nil {
		respond.Error(w, r, err, "Failed to fetch stats")

		return
	}

	respond.JSON(w, http.StatusOK, stats)
}
