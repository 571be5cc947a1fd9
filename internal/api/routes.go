package api

import (
	"net/http"

	"github.com/quaydesk/quay/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain) {
	routes.Register(
		mux,
		domain.Classifications.Handler().Routes(),
		domain.Tariffs.Handler().Routes(),
		domain.Memory.Handler().Routes(),
		domain.Prompts.Handler().Routes(),
	)
}
