// Package sse streams adapter events to HTTP clients as Server-Sent Events.
//
// A Hub fans published events out to connected clients. Each client
// subscribes to topic patterns (path.Match syntax, "*" for everything).
// Publish never blocks: events are dropped when the hub or a client falls
// behind.
//
//	hub := sse.NewHub(log)
//	go hub.Run()
//	router.GET("/v1/events", gin.WrapH(sse.NewHandler(hub, log)))
//	hub.Publish("session", payload)
package sse
