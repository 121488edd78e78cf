package repository

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rpattn/propertyapi/internal/domain"
)

const propertyColumns = "id, address, price, size, description"

var propertyColumnNames = map[domain.PropertyField]string{
	domain.PropertyFieldID:          "id",
	domain.PropertyFieldAddress:     "address",
	domain.PropertyFieldPrice:       "price",
	domain.PropertyFieldSize:        "size",
	domain.PropertyFieldDescription: "description",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// sqlQuery is a statement plus its positional arguments.
type sqlQuery struct {
	SQL  string
	Args []any
}

// whereClause compiles predicates into a WHERE clause using $n placeholders
// starting after the existing args.
func whereClause(predicates []domain.Predicate, args []any) (string, []any, error) {
	if len(predicates) == 0 {
		return "", args, nil
	}

	conditions := make([]string, 0, len(predicates))
	for _, predicate := range predicates {
		column, ok := propertyColumnNames[predicate.Field]
		if !ok {
			return "", nil, domain.NewQueryError("unsupported filter field %q", predicate.Field)
		}

		switch predicate.Op {
		case domain.PredicateOpContainsFold:
			args = append(args, "%"+likeEscaper.Replace(strings.ToLower(predicate.Text))+"%")
			conditions = append(conditions, fmt.Sprintf("LOWER(%s) LIKE $%d", column, len(args)))
		case domain.PredicateOpGreaterEqual:
			args = append(args, predicate.Number)
			conditions = append(conditions, fmt.Sprintf("%s >= $%d", column, len(args)))
		case domain.PredicateOpLessEqual:
			args = append(args, predicate.Number)
			conditions = append(conditions, fmt.Sprintf("%s <= $%d", column, len(args)))
		default:
			return "", nil, domain.NewQueryError("unsupported filter operator %q", predicate.Op)
		}
	}

	return " WHERE " + strings.Join(conditions, " AND "), args, nil
}

func orderByClause(sort domain.PropertySort) (string, error) {
	column, ok := propertyColumnNames[sort.Field]
	if !ok {
		return "", domain.NewQueryError("No property '%s' found for type 'Property'", sort.Field)
	}
	direction := "ASC"
	if sort.Direction == domain.SortDirectionDesc {
		direction = "DESC"
	}
	if column == "id" {
		return " ORDER BY id " + direction, nil
	}
	return " ORDER BY " + column + " " + direction + ", id ASC", nil
}

// buildListQueries returns the page query and the matching count query.
func buildListQueries(filter domain.PropertyFilter, page domain.PageRequest) (sqlQuery, sqlQuery, error) {
	where, args, err := whereClause(filter.Predicates(), nil)
	if err != nil {
		return sqlQuery{}, sqlQuery{}, err
	}
	orderBy, err := orderByClause(page.Sort)
	if err != nil {
		return sqlQuery{}, sqlQuery{}, err
	}

	count := sqlQuery{
		SQL:  "SELECT COUNT(*) FROM properties" + where,
		Args: append([]any(nil), args...),
	}

	listArgs := append(append([]any(nil), args...), int64(page.Size), page.Offset())
	list := sqlQuery{
		SQL: "SELECT " + propertyColumns + " FROM properties" + where + orderBy +
			" LIMIT $" + strconv.Itoa(len(listArgs)-1) + " OFFSET $" + strconv.Itoa(len(listArgs)),
		Args: listArgs,
	}

	return list, count, nil
}
