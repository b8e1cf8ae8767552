package auth

import "strings"

// Permission is an opaque `<resource>.<verb>` identifier. There is no
// hierarchy or wildcard matching.
type Permission string

// Permission identifiers used as the contract between handlers and the gate.
const (
	PermSettingsManage     Permission = "settings.manage"
	PermDatabaseView       Permission = "database.view"
	PermUsersManage        Permission = "users.manage"
	PermSpecialtiesManage  Permission = "specialties.manage"
	PermRolesManage        Permission = "roles.manage"
	PermPatientsManage     Permission = "patients.manage"
	PermCompaniesManage    Permission = "companies.manage"
	PermDoctorsManage      Permission = "doctors.manage"
	PermAppointmentsManage Permission = "appointments.manage"
	PermTreatmentsManage   Permission = "treatments.manage"
	PermCIE10Manage        Permission = "cie10.manage"
)

// KnownPermissions lists the catalog seeded into the permissions table.
func KnownPermissions() []Permission {
	return []Permission{
		PermSettingsManage,
		PermDatabaseView,
		PermUsersManage,
		PermSpecialtiesManage,
		PermRolesManage,
		PermPatientsManage,
		PermCompaniesManage,
		PermDoctorsManage,
		PermAppointmentsManage,
		PermTreatmentsManage,
		PermCIE10Manage,
	}
}

// ValidFormat reports whether p follows the `<resource>.<verb>` convention.
func (p Permission) ValidFormat() bool {
	resource, verb, ok := strings.Cut(string(p), ".")
	if !ok || resource == "" || verb == "" {
		return false
	}
	return !strings.ContainsAny(string(p), " \t\n*")
}
