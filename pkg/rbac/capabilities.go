package rbac

import "sync"

// Capabilities are the named feature checks the platform gates on, derived
// from a role's grant set.
type Capabilities struct {
	ManageUsers                    bool `json:"can_manage_users"`
	ViewAnalytics                  bool `json:"can_view_analytics"`
	ManageFleet                    bool `json:"can_manage_fleet"`
	UploadSDS                      bool `json:"can_upload_sds"`
	GenerateDocuments              bool `json:"can_generate_documents"`
	GenerateDGDocuments            bool `json:"can_generate_dg_documents"`
	GenerateComplianceCertificates bool `json:"can_generate_compliance_certificates"`
	ReportIncidents                bool `json:"can_report_incidents"`
	ManageIoTDevices               bool `json:"can_manage_iot_devices"`
	ViewAuditLogs                  bool `json:"can_view_audit_logs"`
}

// analyticsViews are the grants any one of which lets a role open analytics.
var analyticsViews = []Permission{
	PermAnalyticsOperationalView,
	PermAnalyticsAdvancedView,
	PermAnalyticsFullAccess,
}

// DeriveCapabilities evaluates every capability against set.
func DeriveCapabilities(set PermissionSet) Capabilities {
	viewAnalytics := false
	for _, p := range analyticsViews {
		if set.Contains(p) {
			viewAnalytics = true
			break
		}
	}
	return Capabilities{
		ManageUsers:                    set.Contains(PermUsersManage),
		ViewAnalytics:                  viewAnalytics,
		ManageFleet:                    set.Contains(PermFleetManage),
		UploadSDS:                      set.Contains(PermSDSUpload),
		GenerateDocuments:              set.Contains(PermDocumentsGenerate),
		GenerateDGDocuments:            set.Contains(PermDocumentsDGGenerate),
		GenerateComplianceCertificates: set.Contains(PermDocumentsComplianceCertificatesGenerate),
		ReportIncidents:                set.Contains(PermIncidentsReport),
		ManageIoTDevices:               set.Contains(PermIoTDevicesManage),
		ViewAuditLogs:                  set.Contains(PermAuditLogsView),
	}
}

// CapabilityCache stores derived capabilities. Keys combine a table
// fingerprint with a role, never a subject id, so entries stay correct
// across role changes and table swaps.
type CapabilityCache interface {
	Get(key string) (Capabilities, bool)
	Set(key string, caps Capabilities)
	Clear()
}

// CapabilityKey is the cache key for role under the table identified by
// fingerprint.
func CapabilityKey(fingerprint string, role Role) string {
	return fingerprint + "|" + string(role)
}

// memoCache is the default CapabilityCache. Reads do not take a lock.
type memoCache struct {
	m sync.Map
}

func newMemoCache() *memoCache {
	return &memoCache{}
}

func (c *memoCache) Get(key string) (Capabilities, bool) {
	v, ok := c.m.Load(key)
	if !ok {
		return Capabilities{}, false
	}
	return v.(Capabilities), true
}

func (c *memoCache) Set(key string, caps Capabilities) {
	c.m.Store(key, caps)
}

func (c *memoCache) Clear() {
	c.m.Range(func(k, _ any) bool {
		c.m.Delete(k)
		return true
	})
}
