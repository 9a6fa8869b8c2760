package facade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthbridge/hl7v2/hl7"
	"github.com/healthbridge/hl7v2/parse"
)

func mustParse(t *testing.T, raw string) hl7.Message {
	t.Helper()
	result, err := parse.New().Parse([]byte(raw))
	require.NoError(t, err)
	require.NotNil(t, result.Tree)
	return result.Tree
}

const adtMsg = "MSH|^~\\&|A|B|C|D|20240101||ADT^A01|M1|P|2.5\r" +
	"EVN|A01|20240101\r" +
	"PID|1||12345||Smith^John\r"

const adtMissingEVN = "MSH|^~\\&|A|B|C|D|20240101||ADT^A01|M1|P|2.5\r" +
	"PID|1||12345||Smith^John\r"

func TestNewADT(t *testing.T) {
	t.Parallel()

	msg := mustParse(t, adtMsg)
	adt, err := NewADT(msg)
	require.NoError(t, err)
	assert.Equal(t, "A01", adt.TriggerEvent())
	assert.Equal(t, "M1", adt.ControlID())

	_, ok := adt.EVN()
	assert.True(t, ok)
	_, ok = adt.PID()
	assert.True(t, ok)
	assert.True(t, adt.ValidateDetailed().IsValid())
}

func TestNewADTWrongType(t *testing.T) {
	t.Parallel()

	msg := mustParse(t, "MSH|^~\\&|A|B|C|D|20240101||ORU^R01|M1|P|2.5\r")
	_, err := NewADT(msg)
	require.Error(t, err)

	var wrongType *WrongMessageTypeError
	require.ErrorAs(t, err, &wrongType)
	assert.Equal(t, "ADT", wrongType.Expected)
	assert.Equal(t, "ORU", wrongType.Actual)
}

func TestADTValidateDetailedMissingEVN(t *testing.T) {
	t.Parallel()

	msg := mustParse(t, adtMissingEVN)
	adt, err := NewADT(msg)
	require.NoError(t, err)

	result := adt.ValidateDetailed()
	assert.False(t, result.IsValid())
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "EVN", result.Failures[0].Location)
}

const oruMsg = "MSH|^~\\&|A|B|C|D|20240101||ORU^R01|M1|P|2.5\r" +
	"PID|1||12345||Smith^John\r" +
	"OBR|1|||CBC\r" +
	"OBX|1|NM|WBC||7.5|10*9/L|4.0-10.0|N\r"

func TestNewORU(t *testing.T) {
	t.Parallel()

	msg := mustParse(t, oruMsg)
	oru, err := NewORU(msg)
	require.NoError(t, err)
	assert.Equal(t, "R01", oru.TriggerEvent())

	_, ok := oru.OBR()
	assert.True(t, ok)
	assert.Len(t, oru.OBX(), 1)
	assert.True(t, oru.ValidateDetailed().IsValid())
}

func TestORUValidateDetailedMissingOBX(t *testing.T) {
	t.Parallel()

	msg := mustParse(t, "MSH|^~\\&|A|B|C|D|20240101||ORU^R01|M1|P|2.5\r"+
		"OBR|1|||CBC\r")
	oru, err := NewORU(msg)
	require.NoError(t, err)

	result := oru.ValidateDetailed()
	assert.False(t, result.IsValid())
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "OBX", result.Failures[0].Location)
}

const ormMsg = "MSH|^~\\&|A|B|C|D|20240101||ORM^O01|M1|P|2.5\r" +
	"ORC|NW|1\r"

func TestNewORM(t *testing.T) {
	t.Parallel()

	msg := mustParse(t, ormMsg)
	orm, err := NewORM(msg)
	require.NoError(t, err)
	assert.Len(t, orm.ORC(), 1)
	assert.True(t, orm.ValidateDetailed().IsValid())
}

const ackMsg = "MSH|^~\\&|A|B|C|D|20240101||ACK^A01|M2|P|2.5\r" +
	"MSA|AA|M1\r"

func TestNewACK(t *testing.T) {
	t.Parallel()

	msg := mustParse(t, ackMsg)
	ack, err := NewACK(msg)
	require.NoError(t, err)
	assert.Equal(t, "AA", ack.AckCode())
	assert.Equal(t, "M1", ack.AckedControlID())
	assert.True(t, ack.Accepted())
	assert.True(t, ack.ValidateDetailed().IsValid())
}

const qryMsg = "MSH|^~\\&|A|B|C|D|20240101||QRY^Q01|M1|P|2.5\r" +
	"QRD|20240101||R|Q1|||10|12345|RD\r"

func TestNewQRY(t *testing.T) {
	t.Parallel()

	msg := mustParse(t, qryMsg)
	qry, err := NewQRY(msg)
	require.NoError(t, err)
	_, ok := qry.QRD()
	assert.True(t, ok)
	assert.True(t, qry.ValidateDetailed().IsValid())
}

const qbpMsg = "MSH|^~\\&|A|B|C|D|20240101||QBP^Q11|M1|P|2.5\r" +
	"QPD|Q11^Find Candidates|Q1001|@PID.5.1.1=Smith\r"

func TestNewQBP(t *testing.T) {
	t.Parallel()

	msg := mustParse(t, qbpMsg)
	qbp, err := NewQBP(msg)
	require.NoError(t, err)
	assert.Equal(t, "Q11", qbp.TriggerEvent())
	assert.Equal(t, "Q1001", qbp.QueryTag())
	assert.True(t, qbp.ValidateDetailed().IsValid())
}

func TestNewQBPMissingQPD(t *testing.T) {
	t.Parallel()

	msg := mustParse(t, "MSH|^~\\&|A|B|C|D|20240101||QBP^Q11|M1|P|2.5\r")
	qbp, err := NewQBP(msg)
	require.NoError(t, err)

	result := qbp.ValidateDetailed()
	assert.False(t, result.IsValid())
}
