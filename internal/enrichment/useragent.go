package enrichment

import (
	"github.com/mssola/user_agent"
)

// ClientInfo describes the software behind a request.
type ClientInfo struct {
	Browser    string
	Version    string
	OS         string
	DeviceType string
}

func ParseUserAgent(uaString string) *ClientInfo {
	if uaString == "" {
		return &ClientInfo{Browser: "unknown", OS: "unknown", DeviceType: "unknown"}
	}

	ua := user_agent.New(uaString)
	browser, version := ua.Browser()

	deviceType := "desktop"
	switch {
	case ua.Bot():
		deviceType = "bot"
	case ua.Mobile():
		deviceType = "mobile"
	}

	info := &ClientInfo{
		Browser:    browser,
		Version:    version,
		OS:         ua.OS(),
		DeviceType: deviceType,
	}
	if info.OS == "" {
		info.OS = "unknown"
	}
	return info
}

func (i *ClientInfo) String() string {
	if i.Version == "" {
		return i.Browser + "/" + i.OS + " (" + i.DeviceType + ")"
	}
	return i.Browser + " " + i.Version + "/" + i.OS + " (" + i.DeviceType + ")"
}
