// Package mqtt provides MQTT client connectivity for finger.
//
// This package manages:
//   - Connection to a broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//
// # Architecture
//
// MQTT is an optional remote control surface. Commands arrive on
// <prefix>/command/<kind>; the run state, bot list and tick results are
// published under the same prefix.
//
//	finger ↔ MQTT Broker ↔ dashboards, phones, home automation
//
// # Security Considerations
//
//   - Use TLS (cfg.Broker.TLS=true) when the broker is not on localhost
//   - Anyone who can publish to the command topics can drive the bots
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(client.Topics().AllCommands(), 1,
//	    func(topic string, payload []byte) error {
//	        kind, _ := client.Topics().CommandKind(topic)
//	        return handle(kind, payload)
//	    })
package mqtt
