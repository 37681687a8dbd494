package auth

import (
	"strings"

	"github.com/epic-events/crm/internal/domain"
)

// Operation is a business operation reachable from a role menu
type Operation string

const (
	OpLogout              Operation = "logout"
	OpListCustomers       Operation = "list_customers"
	OpListContracts       Operation = "list_contracts"
	OpListEvents          Operation = "list_events"
	OpAssignSupport       Operation = "assign_support"
	OpManageUsers         Operation = "manage_users"
	OpManageContracts     Operation = "manage_contracts"
	OpDeleteEvent         Operation = "delete_event"
	OpCreateCustomer      Operation = "create_customer"
	OpUpdateCustomer      Operation = "update_customer"
	OpUpdateContract      Operation = "update_contract"
	OpCreateEvent         Operation = "create_event"
	OpManageAssignedEvent Operation = "manage_assigned_event"
	OpDeleteAssignedEvent Operation = "delete_assigned_event"
)

// MenuEntry binds a menu key to an operation
type MenuEntry struct {
	Key       string
	Operation Operation
	Label     string
}

var commonEntries = []MenuEntry{
	{Key: "0", Operation: OpLogout, Label: "Logout"},
	{Key: "1", Operation: OpListCustomers, Label: "List customers"},
	{Key: "2", Operation: OpListContracts, Label: "List contracts"},
	{Key: "3", Operation: OpListEvents, Label: "List events"},
}

// roleEntries is the single role to operation table
var roleEntries = map[domain.UserRoleType][]MenuEntry{
	domain.RoleManager: {
		{Key: "4", Operation: OpAssignSupport, Label: "Assign support to an event"},
		{Key: "5", Operation: OpManageUsers, Label: "Manage users"},
		{Key: "6", Operation: OpManageContracts, Label: "Manage contracts"},
		{Key: "7", Operation: OpDeleteEvent, Label: "Delete an event"},
	},
	domain.RoleSales: {
		{Key: "4", Operation: OpCreateCustomer, Label: "Create a customer"},
		{Key: "5", Operation: OpUpdateCustomer, Label: "Update a customer"},
		{Key: "6", Operation: OpUpdateContract, Label: "Update a customer's contract"},
		{Key: "7", Operation: OpCreateEvent, Label: "Create an event"},
	},
	domain.RoleSupport: {
		{Key: "4", Operation: OpManageAssignedEvent, Label: "Manage my assigned event"},
		{Key: "5", Operation: OpDeleteAssignedEvent, Label: "Delete my assigned event"},
	},
	domain.RoleAdmin: {
		{Key: "4", Operation: OpManageUsers, Label: "Manage users"},
		{Key: "5", Operation: OpDeleteEvent, Label: "Delete an event"},
	},
}

// MenuFor returns the entries presented to role, common entries first.
// An unknown role only gets the common entries.
func MenuFor(role domain.UserRoleType) []MenuEntry {
	entries := make([]MenuEntry, 0, len(commonEntries)+len(roleEntries[role]))
	entries = append(entries, commonEntries...)
	return append(entries, roleEntries[role]...)
}

// Resolve maps a menu selection to the operation it names for role
func Resolve(role domain.UserRoleType, selection string) (Operation, bool) {
	selection = strings.TrimSpace(selection)
	for _, e := range MenuFor(role) {
		if e.Key == selection {
			return e.Operation, true
		}
	}
	return "", false
}

// Can reports whether role may perform op
func Can(role domain.UserRoleType, op Operation) bool {
	for _, e := range MenuFor(role) {
		if e.Operation == op {
			return true
		}
	}
	return false
}
