package settings

// BrokerConfig is the broker connection configuration used for device
// command dispatch. It is assembled from the app_settings table with
// documented defaults for any key left unset.
type BrokerConfig struct {
	URL         string `json:"url"`
	Port        int    `json:"port"`
	UseTLS      bool   `json:"use_tls"`
	Username    string `json:"username"`
	Password    string `json:"-"` // write-only through the API
	TopicPrefix string `json:"topic_prefix"`
}

// Defaults for unset broker settings. These match the public HiveMQ
// sandbox the reference hardware ships pointed at.
const (
	DefaultBrokerURL   = "broker.hivemq.com"
	DefaultBrokerPort  = 1883
	DefaultUseTLS      = false
	DefaultTopicPrefix = "forklift/"
)

// Setting keys in the app_settings table.
const (
	KeyBrokerURL   = "mqtt_broker_url"
	KeyBrokerPort  = "mqtt_broker_port"
	KeyUseTLS      = "mqtt_use_tls"
	KeyUsername    = "mqtt_username"
	KeyPassword    = "mqtt_password"
	KeyTopicPrefix = "mqtt_topic_prefix"
)

// defaultBrokerConfig returns a BrokerConfig populated with defaults.
func defaultBrokerConfig() BrokerConfig {
	return BrokerConfig{
		URL:         DefaultBrokerURL,
		Port:        DefaultBrokerPort,
		UseTLS:      DefaultUseTLS,
		TopicPrefix: DefaultTopicPrefix,
	}
}
