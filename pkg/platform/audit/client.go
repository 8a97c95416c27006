package audit

import (
	"strings"

	"github.com/mssola/useragent"
)

// Device classes recorded on events.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceBot     = "bot"
)

// ClientInfo is the parsed form of a User-Agent header.
type ClientInfo struct {
	Browser string
	OS      string
	Device  string
}

// DescribeClient parses a User-Agent header. An empty header yields the zero
// value.
func DescribeClient(userAgent string) ClientInfo {
	if strings.TrimSpace(userAgent) == "" {
		return ClientInfo{}
	}
	ua := useragent.New(userAgent)
	name, version := ua.Browser()
	info := ClientInfo{
		Browser: strings.TrimSpace(name + " " + version),
		OS:      ua.OS(),
		Device:  DeviceDesktop,
	}
	switch {
	case ua.Bot():
		info.Device = DeviceBot
	case ua.Mobile():
		info.Device = DeviceMobile
	}
	return info
}
