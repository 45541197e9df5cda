package contract

import (
	"bytes"
	"encoding/json"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Method names the front-end calls.
const (
	MethodGetObjectCount = "getObjectCount"
	MethodRegisterObject = "registerObject"
	MethodGetObject      = "getObject"
)

var requiredMethods = []string{MethodGetObjectCount, MethodRegisterObject, MethodGetObject}

// Deployment is one entry of the artifact's networks map.
type Deployment struct {
	Address         common.Address `json:"address"`
	TransactionHash common.Hash    `json:"transactionHash"`
}

// Artifact is a Truffle build artifact: the ABI plus where the contract
// is deployed, keyed by network id.
type Artifact struct {
	ContractName string
	ABI          abi.ABI
	Networks     map[string]Deployment
}

type artifactJSON struct {
	ContractName string                `json:"contractName"`
	ABI          json.RawMessage       `json:"abi"`
	Networks     map[string]Deployment `json:"networks"`
}

// ParseArtifact 解析 artifact，并检查三个必需的方法都在 ABI 里
func ParseArtifact(b []byte) (*Artifact, error) {
	var raw artifactJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, errors.Wrap(err, "decode artifact")
	}
	if len(raw.ABI) == 0 {
		return nil, errors.New("artifact has no abi")
	}
	parsed, err := abi.JSON(bytes.NewReader(raw.ABI))
	if err != nil {
		return nil, errors.Wrap(err, "parse abi")
	}
	for _, name := range requiredMethods {
		if _, ok := parsed.Methods[name]; !ok {
			return nil, errors.Errorf("abi has no method %s", name)
		}
	}
	if raw.Networks == nil {
		raw.Networks = map[string]Deployment{}
	}
	return &Artifact{ContractName: raw.ContractName, ABI: parsed, Networks: raw.Networks}, nil
}

// LoadArtifact reads and parses an artifact file.
func LoadArtifact(path string) (*Artifact, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read artifact")
	}
	return ParseArtifact(b)
}

// Resolve looks up the deployed address for networkID.
func (a *Artifact) Resolve(networkID *big.Int) (common.Address, bool) {
	if networkID == nil {
		return common.Address{}, false
	}
	d, ok := a.Networks[networkID.String()]
	if !ok || d.Address == (common.Address{}) {
		return common.Address{}, false
	}
	return d.Address, true
}
