package solana

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ybbus/jsonrpc"
)

func TestParseTransactionError(t *testing.T) {
	for _, tc := range []struct {
		raw         string
		key         TransactionErrorKey
		index       int
		ixKey       InstructionErrorKey
		custom      *CustomError
		noIxErr     bool
		expectError bool
	}{
		{raw: `{"InstructionError":[2,{"Custom":6002}]}`, key: TransactionErrorInstructionError, index: 2, ixKey: InstructionErrorCustom, custom: customError(6002)},
		{raw: `{"InstructionError":[0,"InvalidArgument"]}`, key: TransactionErrorInstructionError, ixKey: InstructionErrorInvalidArgument},
		{raw: `{"InstructionError":["4","MissingRequiredSignature"]}`, key: TransactionErrorInstructionError, index: 4, ixKey: InstructionErrorMissingRequiredSignature},
		{raw: `"BlockhashNotFound"`, key: TransactionErrorBlockhashNotFound, noIxErr: true},
		{raw: `{"InsufficientFundsForRent":{"account_index":3}}`, key: TransactionErrorInsufficientFundsForRent, noIxErr: true},
		{raw: `{"InstructionError":[0]}`, expectError: true},
		{raw: `{"InstructionError":[0,{"Custom":1,"Other":2}]}`, expectError: true},
		{raw: `{"A":1,"B":2}`, expectError: true},
		{raw: `42`, expectError: true},
	} {
		raw, err := decodeJSONWithNumbers([]byte(tc.raw))
		require.NoError(t, err)

		txErr, err := ParseTransactionError(raw)
		if tc.expectError {
			assert.Error(t, err, tc.raw)
			continue
		}
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.key, txErr.ErrorKey(), tc.raw)

		if tc.noIxErr {
			assert.Nil(t, txErr.InstructionError(), tc.raw)
			continue
		}
		require.NotNil(t, txErr.InstructionError(), tc.raw)
		assert.Equal(t, tc.index, txErr.InstructionError().Index, tc.raw)
		assert.Equal(t, tc.ixKey, txErr.InstructionError().ErrorKey(), tc.raw)
		assert.Equal(t, tc.custom, txErr.InstructionError().CustomError(), tc.raw)
	}

	txErr, err := ParseTransactionError(nil)
	assert.NoError(t, err)
	assert.Nil(t, txErr)
}

func TestTransactionError_JSONString(t *testing.T) {
	txErr := NewTransactionError(TransactionErrorDuplicateSignature)
	encoded, err := txErr.JSONString()
	require.NoError(t, err)
	assert.JSONEq(t, `"DuplicateSignature"`, encoded)

	txErr, err = TransactionErrorFromInstructionError(NewInstructionError(0, InstructionErrorInvalidArgument))
	require.NoError(t, err)
	encoded, err = txErr.JSONString()
	require.NoError(t, err)
	assert.JSONEq(t, `{"InstructionError":[0,"InvalidArgument"]}`, encoded)

	txErr, err = TransactionErrorFromInstructionError(&InstructionError{Index: 2, Err: CustomError(6001)})
	require.NoError(t, err)
	encoded, err = txErr.JSONString()
	require.NoError(t, err)
	assert.JSONEq(t, `{"InstructionError":[2,{"Custom":6001}]}`, encoded)

	// What we encode parses back to the same error
	raw, err := decodeJSONWithNumbers([]byte(encoded))
	require.NoError(t, err)
	parsed, err := ParseTransactionError(raw)
	require.NoError(t, err)
	assert.Equal(t, txErr.Error(), parsed.Error())
	assert.Equal(t, customError(6001), parsed.InstructionError().CustomError())

	_, err = TransactionErrorFromInstructionError(nil)
	assert.Error(t, err)
}

func TestParseRPCError(t *testing.T) {
	txErr, err := ParseRPCError(&jsonrpc.RPCError{
		Code:    -32002,
		Message: "Transaction simulation failed",
		Data: map[string]interface{}{
			"err":  map[string]interface{}{"InstructionError": []interface{}{1.0, map[string]interface{}{"Custom": 6000.0}}},
			"logs": []interface{}{},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, txErr.InstructionError().Index)
	assert.Equal(t, customError(6000), txErr.InstructionError().CustomError())

	txErr, err = ParseRPCError(&jsonrpc.RPCError{Code: -32002, Data: map[string]interface{}{"logs": nil}})
	assert.NoError(t, err)
	assert.Nil(t, txErr)

	_, err = ParseRPCError(&jsonrpc.RPCError{Code: -32002, Data: "unexpected"})
	assert.Error(t, err)
}

func TestParseJSONNumber(t *testing.T) {
	for _, v := range []interface{}{"7", 7.0, json.Number("7")} {
		n, err := parseJSONNumber(v)
		assert.NoError(t, err)
		assert.Equal(t, 7, n)
	}

	_, err := parseJSONNumber(true)
	assert.Error(t, err)
	_, err = parseJSONNumber("seven")
	assert.Error(t, err)
}

func TestTransactionError_Unwrap(t *testing.T) {
	txErr, err := TransactionErrorFromInstructionError(&InstructionError{Index: 1, Err: CustomError(6001)})
	require.NoError(t, err)

	wrapped := errors.Wrap(txErr, "failed to submit")
	assert.True(t, IsTransactionErrorKey(wrapped, TransactionErrorInstructionError))
	assert.False(t, IsTransactionErrorKey(wrapped, TransactionErrorAccountInUse))

	var custom CustomError
	assert.True(t, errors.As(wrapped, &custom))
	assert.Equal(t, CustomError(6001), custom)

	ixErr := NewInstructionError(3, InstructionErrorMissingRequiredSignature)
	assert.Equal(t, InstructionErrorMissingRequiredSignature, ixErr.ErrorKey())
	assert.Nil(t, ixErr.CustomError())

	assert.True(t, IsTransactionErrorKey(NewTransactionError(TransactionErrorBlockhashNotFound), TransactionErrorBlockhashNotFound))
	assert.False(t, IsTransactionErrorKey(errors.New("other"), TransactionErrorBlockhashNotFound))
}

func customError(code int) *CustomError {
	ce := CustomError(code)
	return &ce
}
