package gateway

import "net/http"

type Service string

const (
	ServiceNILM    Service = "nilm"
	ServicePV      Service = "pv"
	ServiceChatbot Service = "chatbot"
)

var Services = []Service{ServiceNILM, ServicePV, ServiceChatbot}

// Route maps one public endpoint onto an upstream prediction service.
type Route struct {
	Method   string
	Path     string
	Service  Service
	Upstream string
	// DropBody sends the upstream request without the caller's body.
	DropBody bool
}

var Routes = []Route{
	{Method: http.MethodPost, Path: "/api/nilm/predict", Service: ServiceNILM, Upstream: "/predict"},
	{Method: http.MethodPost, Path: "/api/nilm/batch-predict", Service: ServiceNILM, Upstream: "/batch_predict"},
	{Method: http.MethodGet, Path: "/api/nilm/models", Service: ServiceNILM, Upstream: "/models"},

	{Method: http.MethodPost, Path: "/api/pv/predict", Service: ServicePV, Upstream: "/predict"},
	{Method: http.MethodPost, Path: "/api/pv/batch-predict", Service: ServicePV, Upstream: "/batch_predict"},
	{Method: http.MethodGet, Path: "/api/pv/models", Service: ServicePV, Upstream: "/models"},
	{Method: http.MethodPost, Path: "/api/pv/theoretical", Service: ServicePV, Upstream: "/calculate_theoretical"},

	{Method: http.MethodPost, Path: "/api/chatbot/chat", Service: ServiceChatbot, Upstream: "/chat"},
	{Method: http.MethodPost, Path: "/api/chatbot/clear", Service: ServiceChatbot, Upstream: "/clear"},
	{Method: http.MethodGet, Path: "/api/chatbot/suggest", Service: ServiceChatbot, Upstream: "/suggest"},
	{Method: http.MethodPost, Path: "/api/chatbot/refresh", Service: ServiceChatbot, Upstream: "/refresh_dataset_index", DropBody: true},
}
