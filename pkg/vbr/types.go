package vbr

import "encoding/json"

// TokenResponse is the body of a successful /api/oauth2/token call.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
}

// Pagination is the paging block of every VBR collection response.
type Pagination struct {
	Total int `json:"total"`
	Count int `json:"count"`
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// Page is one page of a VBR collection.
type Page[T any] struct {
	Data       []T         `json:"data"`
	Pagination *Pagination `json:"pagination"`
}

// Proxy is a backup proxy from /api/v1/backupInfrastructure/proxies.
type Proxy struct {
	ID          json.RawMessage `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	Server      *ProxyServer    `json:"server"`
}

type ProxyServer struct {
	TransportMode         string               `json:"transportMode"`
	MaxTaskCount          int                  `json:"maxTaskCount"`
	FailoverToNetwork     bool                 `json:"failoverToNetwork"`
	HostToProxyEncryption bool                 `json:"hostToProxyEncryption"`
	ConnectedDatastores   *ConnectedDatastores `json:"connectedDatastores"`
}

type ConnectedDatastores struct {
	AutoSelectEnabled bool `json:"autoSelectEnabled"`
}

// RepositoryState is an entry of /api/v1/backupInfrastructure/repositories/states.
type RepositoryState struct {
	ID          json.RawMessage `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	Path        string          `json:"path"`
	HostName    string          `json:"hostName"`
	CapacityGB  float64         `json:"capacityGB"`
	FreeGB      float64         `json:"freeGB"`
	UsedSpaceGB float64         `json:"usedSpaceGB"`
	IsOnline    bool            `json:"isOnline"`
}

// Session is a job session from /api/v1/sessions.
type Session struct {
	ID              json.RawMessage `json:"id"`
	Name            string          `json:"name"`
	SessionType     string          `json:"sessionType"`
	State           string          `json:"state"`
	PlatformName    string          `json:"platformName"`
	CreationTime    string          `json:"creationTime"`
	EndTime         string          `json:"endTime"`
	ProgressPercent int             `json:"progressPercent"`
	Result          *SessionResult  `json:"result"`
}

type SessionResult struct {
	Result  string `json:"result"`
	Message string `json:"message"`
}

// License is the body of /api/v1/license.
type License struct {
	Status                 string                  `json:"status"`
	Edition                string                  `json:"edition"`
	ExpirationDate         string                  `json:"expirationDate"`
	LicensedTo             string                  `json:"licensedTo"`
	SupportExpirationDate  string                  `json:"supportExpirationDate"`
	InstanceLicenseSummary *InstanceLicenseSummary `json:"instanceLicenseSummary"`
}

type InstanceLicenseSummary struct {
	Package                 string  `json:"package"`
	LicensedInstancesNumber float64 `json:"licensedInstancesNumber"`
	UsedInstancesNumber     float64 `json:"usedInstancesNumber"`
	// Workloads are kept verbatim; only their type is interpreted.
	Workload []json.RawMessage `json:"workload"`
}
