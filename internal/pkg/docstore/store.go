// Package docstore é o adaptador de persistência: um armazenamento chave-valor
// de documentos onde cada coleção é gravada inteira, com versão otimista.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Nomes das coleções persistidas.
const (
	CollectionProducts = "products"
	CollectionReturns  = "returns"
	CollectionReceipts = "receipts"
	CollectionUsers    = "users"
)

// ErrVersionConflict indica que a coleção foi gravada por outra operação
// depois da leitura (a versão esperada está desatualizada).
var ErrVersionConflict = errors.New("docstore: versão do documento desatualizada")

// Document é o conteúdo serializado de uma coleção e sua versão.
// Uma coleção inexistente é lida com Payload vazio e Version 0.
type Document struct {
	Payload []byte
	Version int64
}

// Store é o contrato de persistência. Save substitui a coleção inteira somente
// se a versão gravada ainda for expectedVersion, e devolve a nova versão.
type Store interface {
	Load(ctx context.Context, collection string) (Document, error)
	Save(ctx context.Context, collection string, payload []byte, expectedVersion int64) (int64, error)
}

// GenerateID devolve um identificador opaco e único.
func GenerateID() string {
	return uuid.NewString()
}

// GenerateNumber monta o número legível de um documento, no formato
// <PREFIXO>-<aaaammddhhmmss>-<6 hex>. O sufixo aleatório evita colisão entre
// documentos criados no mesmo segundo.
func GenerateNumber(prefix string, at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("%s-%s-%s", prefix, at.UTC().Format("20060102150405"), suffix)
}
