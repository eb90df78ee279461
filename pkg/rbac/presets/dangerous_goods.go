package presets

import "authz-service/pkg/rbac"

// DangerousGoods is the grant table of the dangerous-goods operations
// platform. Each role lists only what it adds to the role below it.
func DangerousGoods() rbac.Config {
	return rbac.Config{
		Roles: []rbac.RoleDefinition{
			{
				Name: rbac.RoleViewer,
				Grants: []rbac.Permission{
					rbac.PermDashboardView,
					rbac.PermTrackingView,
					rbac.PermDGView,
					rbac.PermDGLookup,
					rbac.PermSDSView,
					rbac.PermEPGView,
					rbac.PermEmergencyProceduresView,
					rbac.PermEmergencyContactsView,
					rbac.PermTrainingView,
					rbac.PermNotificationsView,
					rbac.PermDocumentsView,
					rbac.PermComplianceView,
				},
			},
			{
				Name:     rbac.RoleDriver,
				Inherits: rbac.RoleViewer,
				Grants: []rbac.Permission{
					rbac.PermShipmentsViewOwn,
					rbac.PermShipmentsStatusUpdate,
					rbac.PermTrackingLiveView,
					rbac.PermIncidentsViewOwn,
					rbac.PermIncidentsReport,
					rbac.PermInspectionsPerform,
					rbac.PermTrainingComplete,
					rbac.PermMobileAppAccess,
					rbac.PermManifestsView,
					rbac.PermLoadPlansView,
					rbac.PermIoTAlertsView,
					rbac.PermDocumentsUpload,
					rbac.PermFleetView,
					rbac.PermDriversCertificationsView,
					rbac.PermRoutesView,
				},
			},
			{
				Name:     rbac.RoleOperator,
				Inherits: rbac.RoleDriver,
				Grants: []rbac.Permission{
					rbac.PermShipmentsViewAll,
					rbac.PermShipmentsCreate,
					rbac.PermShipmentsEdit,
					rbac.PermShipmentsAssign,
					rbac.PermShipmentsExport,
					rbac.PermTrackingHistoryView,
					rbac.PermFleetVehiclesEdit,
					rbac.PermFleetComplianceView,
					rbac.PermFleetMaintenanceView,
					rbac.PermFleetDriversAssign,
					rbac.PermDriversView,
					rbac.PermDGSegregationCheck,
					rbac.PermDGPlacardsGenerate,
					rbac.PermSDSUpload,
					rbac.PermEPGCreate,
					rbac.PermDocumentsGenerate,
					rbac.PermDocumentsDGGenerate,
					rbac.PermDocumentsManifestsGenerate,
					rbac.PermManifestsUpload,
					rbac.PermManifestsProcess,
					rbac.PermLoadPlansCreate,
					rbac.PermLoadPlansOptimize,
					rbac.PermIncidentsViewAll,
					rbac.PermInspectionsView,
					rbac.PermIoTDevicesView,
					rbac.PermIoTAlertsAcknowledge,
					rbac.PermIoTTelemetryView,
					rbac.PermCustomersView,
					rbac.PermPricingView,
					rbac.PermQuotesCreate,
					rbac.PermRoutesPlan,
					rbac.PermAnalyticsOperationalView,
					rbac.PermReportsView,
					rbac.PermCapacityMarketplaceView,
				},
			},
			{
				Name:     rbac.RoleManager,
				Inherits: rbac.RoleOperator,
				Grants: []rbac.Permission{
					rbac.PermShipmentsDelete,
					rbac.PermFleetVehiclesCreate,
					rbac.PermFleetVehiclesDelete,
					rbac.PermFleetComplianceEdit,
					rbac.PermFleetMaintenanceSchedule,
					rbac.PermFleetManage,
					rbac.PermDriversManage,
					rbac.PermDriversCertificationsEdit,
					rbac.PermDGClassificationEdit,
					rbac.PermSDSEdit,
					rbac.PermEPGEdit,
					rbac.PermDocumentsComplianceCertificatesGenerate,
					rbac.PermComplianceAuditsView,
					rbac.PermComplianceReportsGenerate,
					rbac.PermIncidentsManage,
					rbac.PermIncidentsInvestigate,
					rbac.PermInspectionsApprove,
					rbac.PermEmergencyProceduresManage,
					rbac.PermIoTDevicesManage,
					rbac.PermTrainingManage,
					rbac.PermCustomersManage,
					rbac.PermPricingManage,
					rbac.PermRoutesOptimize,
					rbac.PermAnalyticsAdvancedView,
					rbac.PermAnalyticsExport,
					rbac.PermReportsGenerate,
					rbac.PermReportsSchedule,
					rbac.PermUsersView,
					rbac.PermUsersInvite,
					rbac.PermSettingsView,
					rbac.PermERPIntegrationView,
					rbac.PermNotificationsManage,
					rbac.PermCapacityMarketplaceBid,
				},
			},
			{
				Name:     rbac.RoleAdmin,
				Inherits: rbac.RoleManager,
				Grants: []rbac.Permission{
					rbac.PermAnalyticsFullAccess,
					rbac.PermUsersManage,
					rbac.PermUsersRolesAssign,
					rbac.PermSettingsCompanyEdit,
					rbac.PermSettingsSystemManage,
					rbac.PermSettingsIntegrationsManage,
					rbac.PermERPIntegrationManage,
					rbac.PermAuditLogsView,
					rbac.PermSDSDelete,
					rbac.PermDocumentsDelete,
					rbac.PermComplianceAuditsManage,
				},
			},
		},
		Hierarchy: rbac.Hierarchy(),
	}
}
