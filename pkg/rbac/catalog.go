package rbac

import (
	"fmt"
	"sort"
)

// Dashboard
const (
	PermDashboardView Permission = "dashboard.view"
)

// Shipments
const (
	PermShipmentsViewOwn      Permission = "shipments.view.own"
	PermShipmentsViewAll      Permission = "shipments.view.all"
	PermShipmentsCreate       Permission = "shipments.create"
	PermShipmentsEdit         Permission = "shipments.edit"
	PermShipmentsDelete       Permission = "shipments.delete"
	PermShipmentsAssign       Permission = "shipments.assign"
	PermShipmentsStatusUpdate Permission = "shipments.status.update"
	PermShipmentsExport       Permission = "shipments.export"
)

// Tracking
const (
	PermTrackingView        Permission = "tracking.view"
	PermTrackingLiveView    Permission = "tracking.live.view"
	PermTrackingHistoryView Permission = "tracking.history.view"
)

// Fleet and drivers
const (
	PermFleetView                 Permission = "fleet.view"
	PermFleetManage               Permission = "fleet.manage"
	PermFleetVehiclesCreate       Permission = "fleet.vehicles.create"
	PermFleetVehiclesEdit         Permission = "fleet.vehicles.edit"
	PermFleetVehiclesDelete       Permission = "fleet.vehicles.delete"
	PermFleetComplianceView       Permission = "fleet.compliance.view"
	PermFleetComplianceEdit       Permission = "fleet.compliance.edit"
	PermFleetMaintenanceView      Permission = "fleet.maintenance.view"
	PermFleetMaintenanceSchedule  Permission = "fleet.maintenance.schedule"
	PermFleetDriversAssign        Permission = "fleet.drivers.assign"
	PermDriversView               Permission = "drivers.view"
	PermDriversManage             Permission = "drivers.manage"
	PermDriversCertificationsView Permission = "drivers.certifications.view"
	PermDriversCertificationsEdit Permission = "drivers.certifications.edit"
)

// Dangerous goods, safety data sheets and emergency procedure guides
const (
	PermDGView               Permission = "dg.view"
	PermDGLookup             Permission = "dg.lookup"
	PermDGSegregationCheck   Permission = "dg.segregation.check"
	PermDGClassificationEdit Permission = "dg.classification.edit"
	PermDGPlacardsGenerate   Permission = "dg.placards.generate"
	PermSDSView              Permission = "sds.view"
	PermSDSUpload            Permission = "sds.upload"
	PermSDSEdit              Permission = "sds.edit"
	PermSDSDelete            Permission = "sds.delete"
	PermEPGView              Permission = "epg.view"
	PermEPGCreate            Permission = "epg.create"
	PermEPGEdit              Permission = "epg.edit"
)

// Documents, manifests and load plans
const (
	PermDocumentsView                           Permission = "documents.view"
	PermDocumentsUpload                         Permission = "documents.upload"
	PermDocumentsGenerate                       Permission = "documents.generate"
	PermDocumentsDGGenerate                     Permission = "documents.dg.generate"
	PermDocumentsManifestsGenerate              Permission = "documents.manifests.generate"
	PermDocumentsComplianceCertificatesGenerate Permission = "documents.compliance.certificates.generate"
	PermDocumentsDelete                         Permission = "documents.delete"
	PermManifestsView                           Permission = "manifests.view"
	PermManifestsUpload                         Permission = "manifests.upload"
	PermManifestsProcess                        Permission = "manifests.process"
	PermLoadPlansView                           Permission = "load_plans.view"
	PermLoadPlansCreate                         Permission = "load_plans.create"
	PermLoadPlansOptimize                       Permission = "load_plans.optimize"
)

// Compliance, incidents, inspections and emergency response
const (
	PermComplianceView            Permission = "compliance.view"
	PermComplianceAuditsView      Permission = "compliance.audits.view"
	PermComplianceAuditsManage    Permission = "compliance.audits.manage"
	PermComplianceReportsGenerate Permission = "compliance.reports.generate"
	PermIncidentsViewOwn          Permission = "incidents.view.own"
	PermIncidentsViewAll          Permission = "incidents.view.all"
	PermIncidentsReport           Permission = "incidents.report"
	PermIncidentsManage           Permission = "incidents.manage"
	PermIncidentsInvestigate      Permission = "incidents.investigate"
	PermInspectionsView           Permission = "inspections.view"
	PermInspectionsPerform        Permission = "inspections.perform"
	PermInspectionsApprove        Permission = "inspections.approve"
	PermEmergencyProceduresView   Permission = "emergency.procedures.view"
	PermEmergencyProceduresManage Permission = "emergency.procedures.manage"
	PermEmergencyContactsView     Permission = "emergency.contacts.view"
)

// IoT monitoring
const (
	PermIoTDevicesView       Permission = "iot.devices.view"
	PermIoTDevicesManage     Permission = "iot.devices.manage"
	PermIoTAlertsView        Permission = "iot.alerts.view"
	PermIoTAlertsAcknowledge Permission = "iot.alerts.acknowledge"
	PermIoTTelemetryView     Permission = "iot.telemetry.view"
)

// Training
const (
	PermTrainingView     Permission = "training.view"
	PermTrainingComplete Permission = "training.complete"
	PermTrainingManage   Permission = "training.manage"
)

// Commercial: customers, pricing, routes, capacity marketplace
const (
	PermCustomersView           Permission = "customers.view"
	PermCustomersManage         Permission = "customers.manage"
	PermPricingView             Permission = "pricing.view"
	PermPricingManage           Permission = "pricing.manage"
	PermQuotesCreate            Permission = "quotes.create"
	PermRoutesView              Permission = "routes.view"
	PermRoutesPlan              Permission = "routes.plan"
	PermRoutesOptimize          Permission = "routes.optimize"
	PermCapacityMarketplaceView Permission = "capacity_marketplace.view"
	PermCapacityMarketplaceBid  Permission = "capacity_marketplace.bid"
)

// Analytics and reporting
const (
	PermAnalyticsOperationalView Permission = "analytics.operational.view"
	PermAnalyticsAdvancedView    Permission = "analytics.advanced.view"
	PermAnalyticsFullAccess      Permission = "analytics.full.access"
	PermAnalyticsExport          Permission = "analytics.export"
	PermReportsView              Permission = "reports.view"
	PermReportsGenerate          Permission = "reports.generate"
	PermReportsSchedule          Permission = "reports.schedule"
)

// Administration
const (
	PermUsersView                  Permission = "users.view"
	PermUsersInvite                Permission = "users.invite"
	PermUsersManage                Permission = "users.manage"
	PermUsersRolesAssign           Permission = "users.roles.assign"
	PermSettingsView               Permission = "settings.view"
	PermSettingsCompanyEdit        Permission = "settings.company.edit"
	PermSettingsSystemManage       Permission = "settings.system.manage"
	PermSettingsIntegrationsManage Permission = "settings.integrations.manage"
	PermERPIntegrationView         Permission = "erp.integration.view"
	PermERPIntegrationManage       Permission = "erp.integration.manage"
	PermAuditLogsView              Permission = "audit.logs.view"
	PermNotificationsView          Permission = "notifications.view"
	PermNotificationsManage        Permission = "notifications.manage"
	PermMobileAppAccess            Permission = "mobile.app.access"
)

// catalog is the closed permission vocabulary. A token absent from this list
// cannot be granted or queried.
var catalog = []Permission{
	PermDashboardView,

	PermShipmentsViewOwn,
	PermShipmentsViewAll,
	PermShipmentsCreate,
	PermShipmentsEdit,
	PermShipmentsDelete,
	PermShipmentsAssign,
	PermShipmentsStatusUpdate,
	PermShipmentsExport,

	PermTrackingView,
	PermTrackingLiveView,
	PermTrackingHistoryView,

	PermFleetView,
	PermFleetManage,
	PermFleetVehiclesCreate,
	PermFleetVehiclesEdit,
	PermFleetVehiclesDelete,
	PermFleetComplianceView,
	PermFleetComplianceEdit,
	PermFleetMaintenanceView,
	PermFleetMaintenanceSchedule,
	PermFleetDriversAssign,
	PermDriversView,
	PermDriversManage,
	PermDriversCertificationsView,
	PermDriversCertificationsEdit,

	PermDGView,
	PermDGLookup,
	PermDGSegregationCheck,
	PermDGClassificationEdit,
	PermDGPlacardsGenerate,
	PermSDSView,
	PermSDSUpload,
	PermSDSEdit,
	PermSDSDelete,
	PermEPGView,
	PermEPGCreate,
	PermEPGEdit,

	PermDocumentsView,
	PermDocumentsUpload,
	PermDocumentsGenerate,
	PermDocumentsDGGenerate,
	PermDocumentsManifestsGenerate,
	PermDocumentsComplianceCertificatesGenerate,
	PermDocumentsDelete,
	PermManifestsView,
	PermManifestsUpload,
	PermManifestsProcess,
	PermLoadPlansView,
	PermLoadPlansCreate,
	PermLoadPlansOptimize,

	PermComplianceView,
	PermComplianceAuditsView,
	PermComplianceAuditsManage,
	PermComplianceReportsGenerate,
	PermIncidentsViewOwn,
	PermIncidentsViewAll,
	PermIncidentsReport,
	PermIncidentsManage,
	PermIncidentsInvestigate,
	PermInspectionsView,
	PermInspectionsPerform,
	PermInspectionsApprove,
	PermEmergencyProceduresView,
	PermEmergencyProceduresManage,
	PermEmergencyContactsView,

	PermIoTDevicesView,
	PermIoTDevicesManage,
	PermIoTAlertsView,
	PermIoTAlertsAcknowledge,
	PermIoTTelemetryView,

	PermTrainingView,
	PermTrainingComplete,
	PermTrainingManage,

	PermCustomersView,
	PermCustomersManage,
	PermPricingView,
	PermPricingManage,
	PermQuotesCreate,
	PermRoutesView,
	PermRoutesPlan,
	PermRoutesOptimize,
	PermCapacityMarketplaceView,
	PermCapacityMarketplaceBid,

	PermAnalyticsOperationalView,
	PermAnalyticsAdvancedView,
	PermAnalyticsFullAccess,
	PermAnalyticsExport,
	PermReportsView,
	PermReportsGenerate,
	PermReportsSchedule,

	PermUsersView,
	PermUsersInvite,
	PermUsersManage,
	PermUsersRolesAssign,
	PermSettingsView,
	PermSettingsCompanyEdit,
	PermSettingsSystemManage,
	PermSettingsIntegrationsManage,
	PermERPIntegrationView,
	PermERPIntegrationManage,
	PermAuditLogsView,
	PermNotificationsView,
	PermNotificationsManage,
	PermMobileAppAccess,
}

var catalogIndex = func() map[Permission]struct{} {
	m := make(map[Permission]struct{}, len(catalog))
	for _, p := range catalog {
		m[p] = struct{}{}
	}
	return m
}()

// Exists reports whether token is a member of the permission catalog.
func Exists(token string) bool {
	_, ok := catalogIndex[Permission(token)]
	return ok
}

// Valid reports whether p is a member of the permission catalog.
func (p Permission) Valid() bool {
	_, ok := catalogIndex[p]
	return ok
}

// ParsePermission validates token against the catalog.
func ParsePermission(token string) (Permission, error) {
	p := Permission(token)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPermission, token)
	}
	return p, nil
}

// ParsePermissions validates every token and reports all unknown ones at once.
func ParsePermissions(tokens []string) ([]Permission, error) {
	perms := make([]Permission, 0, len(tokens))
	var unknown []string
	for _, token := range tokens {
		p := Permission(token)
		if !p.Valid() {
			unknown = append(unknown, token)
			continue
		}
		perms = append(perms, p)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPermission, unknown)
	}
	return perms, nil
}

// AllPermissions returns the catalog sorted by token.
func AllPermissions() []Permission {
	out := make([]Permission, len(catalog))
	copy(out, catalog)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CatalogSize is the number of tokens in the vocabulary.
func CatalogSize() int {
	return len(catalogIndex)
}
