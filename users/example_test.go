package users_test

import (
	"fmt"

	"github.com/jrsteele09/go-college-portal/users"
)

func ExampleUser_HasAnyRole() {
	u := &users.User{Name: "Grace", Role: users.NormalizeRole("faculty")}

	fmt.Println(u.HasAnyRole(users.RoleAdmin, users.RoleFaculty))
	fmt.Println(u.HasPermission(users.PermMarkAttendance))
	// Output:
	// true
	// true
}
