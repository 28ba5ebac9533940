package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssigneeRefValidate(t *testing.T) {
	staffID := uint(7)
	userID := uint(3)

	tests := map[string]struct {
		assignee AssigneeRef
		expErr   bool
	}{
		"Staff only is valid": {
			assignee: AssigneeRef{StaffID: &staffID},
		},
		"User only is valid": {
			assignee: AssigneeRef{AgentUserID: &userID},
		},
		"Both set is invalid": {
			assignee: AssigneeRef{StaffID: &staffID, AgentUserID: &userID},
			expErr:   true,
		},
		"Neither set is invalid": {
			assignee: AssigneeRef{},
			expErr:   true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := test.assignee.Validate()
			if test.expErr {
				require.Error(t, err)
				assert.IsType(t, &ValidationError{}, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAssigneeRefEquals(t *testing.T) {
	a, b, c := uint(1), uint(1), uint(2)

	assert.True(t, AssigneeRef{StaffID: &a}.Equals(AssigneeRef{StaffID: &b}))
	assert.False(t, AssigneeRef{StaffID: &a}.Equals(AssigneeRef{StaffID: &c}))
	// Same id in different variants is a different assignee
	assert.False(t, AssigneeRef{StaffID: &a}.Equals(AssigneeRef{AgentUserID: &b}))
	assert.True(t, AssigneeRef{}.Equals(AssigneeRef{}))
}

func TestInstanceAssigneeRoundTrip(t *testing.T) {
	staffID := uint(42)
	instance := SequenceInstance{}

	instance.SetAssignee(AssigneeRef{StaffID: &staffID})

	require.NotNil(t, instance.StaffID)
	assert.Nil(t, instance.AgentUserID)
	assert.Equal(t, staffID, *instance.StaffID)

	userID := uint(9)
	instance.SetAssignee(AssigneeRef{AgentUserID: &userID})

	assert.Nil(t, instance.StaffID)
	require.NotNil(t, instance.AgentUserID)
	assert.Equal(t, userID, *instance.AgentUserID)
}

func TestInstanceValidateSubject(t *testing.T) {
	contactID := uint(5)
	saleID := uint(6)

	t.Run("No subject is fine", func(t *testing.T) {
		instance := SequenceInstance{CustomerName: "Pat Jones"}
		assert.NoError(t, instance.ValidateSubject())
	})

	t.Run("Contact only is fine", func(t *testing.T) {
		instance := SequenceInstance{ContactID: &contactID}
		assert.NoError(t, instance.ValidateSubject())
	})

	t.Run("Sale only is fine", func(t *testing.T) {
		instance := SequenceInstance{SaleID: &saleID}
		assert.NoError(t, instance.ValidateSubject())
	})

	t.Run("Both contact and sale is rejected", func(t *testing.T) {
		instance := SequenceInstance{ContactID: &contactID, SaleID: &saleID}
		err := instance.ValidateSubject()
		require.Error(t, err)
		assert.IsType(t, &ValidationError{}, err)
	})
}
