// Package remote exposes the orchestrator over MQTT.
//
// Inbound, the Bridge subscribes to <prefix>/command/+ and turns messages
// into bot.Command values on the orchestrator's command channel:
//
//	finger/command/toggle      {"index": 0}  or  {"bot": "wow"}
//	finger/command/restart     {"bot": "games/zombie"}
//	finger/command/start_stop
//	finger/command/rescan
//	finger/command/quit
//
// Outbound, the Bridge is an orchestrator.Observer. Run state changes and
// the bot list are published retained; each tick result is published on
// <prefix>/instance/<id>/tick. Publishing happens on the Bridge's own
// goroutine (Run) so a slow broker never stalls the scheduler.
package remote
