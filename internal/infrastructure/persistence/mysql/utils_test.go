package mysql

import (
	"errors"
	"fmt"
	"testing"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateError(t *testing.T) {
	assert.False(t, isDuplicateError(nil))
	assert.True(t, isDuplicateError(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateError(fmt.Errorf("insert: %w", &mysqldriver.MySQLError{Number: 1062, Message: "dup"})))
	assert.False(t, isDuplicateError(&mysqldriver.MySQLError{Number: 1045, Message: "denied"}))
	assert.True(t, isDuplicateError(errors.New("Error 1062: Duplicate entry 'a' for key 'email'")))
	assert.False(t, isDuplicateError(errors.New("connection refused")))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now\\`, escapeLike(`50% off_now\`))
	assert.Equal(t, "plain", escapeLike("plain"))
}
