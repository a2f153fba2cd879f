package routes

import (
	"net/http"

	_ "github.com/emirhansari/whatsapp-inbox/internal/docs" // swagger docs
	"github.com/emirhansari/whatsapp-inbox/internal/response"
	swaggerHandler "github.com/swaggo/http-swagger"
)

type AppDeps struct {
	Home    HomeHandler
	Message MessageHandler
	Webhook WebhookHandler
	WS      WSHandler
}

type HomeHandler interface {
	Index(w http.ResponseWriter, r *http.Request)
	Health(w http.ResponseWriter, r *http.Request)
}

type MessageHandler interface {
	ListConversations(w http.ResponseWriter, r *http.Request)
	ListMessages(w http.ResponseWriter, r *http.Request)
	SendMessage(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
	StartStopScheduler(w http.ResponseWriter, r *http.Request)
}

type WebhookHandler interface {
	Receive(w http.ResponseWriter, r *http.Request)
}

type WSHandler interface {
	Subscribe(w http.ResponseWriter, r *http.Request)
}

func Register(mux *http.ServeMux, d AppDeps) {
	mux.HandleFunc("GET /{$}", d.Home.Index)
	mux.HandleFunc("GET /health", d.Home.Health)

	mux.HandleFunc("POST /webhook", d.Webhook.Receive)

	mux.HandleFunc("GET /conversations", d.Message.ListConversations)
	mux.HandleFunc("GET /conversations/{id}/messages", d.Message.ListMessages)
	mux.HandleFunc("POST /messages", d.Message.SendMessage)
	mux.HandleFunc("PATCH /messages/{id}/status", d.Message.UpdateStatus)
	mux.HandleFunc("POST /scheduler", d.Message.StartStopScheduler)

	mux.HandleFunc("GET /ws", d.WS.Subscribe)

	//Swagger
	mux.HandleFunc("GET /swagger/", swaggerHandler.WrapHandler)

	// Fallback handler for undefined routes (404)
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.RespondError(w, http.StatusNotFound, "route not found")
	}))
}
