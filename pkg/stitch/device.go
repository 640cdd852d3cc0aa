package stitch

import "runtime"

// Version is the SDK version reported to the backend in device documents.
const Version = "0.3.0"

// deviceInfo is the caller-supplied identification of the local app,
// included in the device document sent at login.
type deviceInfo struct {
	appID      string
	appVersion string
}

// deviceDoc builds the options.device document for login and link requests.
// The device id is included once the backend has assigned one.
func (a *Auth) deviceDoc() map[string]string {
	doc := map[string]string{
		"platform":        runtime.GOOS,
		"platformVersion": runtime.Version(),
		"sdkVersion":      Version,
	}

	if a.device.appID != "" {
		doc["appId"] = a.device.appID
	}
	if a.device.appVersion != "" {
		doc["appVersion"] = a.device.appVersion
	}
	if id := a.store.Current().DeviceID; id != "" {
		doc["deviceId"] = id
	}

	return doc
}
